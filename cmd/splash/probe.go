package main

import (
	"github.com/aretw0/splash/internal/cli"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check connectivity and access policies of the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		_, err = cli.CheckBackend(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
