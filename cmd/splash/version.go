package main

import (
	"fmt"

	"github.com/aretw0/splash"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of splash",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "splash version %s\n", splash.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
