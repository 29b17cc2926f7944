package main

import (
	"fmt"

	"github.com/aretw0/splash/internal/cli"
	"github.com/aretw0/splash/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the loading sequence as a Mermaid diagram",
	Long:  `Loads the step catalog and outputs a Mermaid diagram (graph TD) of the loading sequence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog, timing, err := cli.LoadCatalog(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(catalog, timing.FaultStep, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
