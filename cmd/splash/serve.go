package main

import (
	"context"

	"github.com/aretw0/splash/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Hosts splash sessions behind a JSON/SSE API. Snapshots are persisted to the
configured store (memory, redis or sqlite). Stops gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Driver, _ = cmd.Flags().GetString("store")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Server.Metrics, _ = cmd.Flags().GetBool("metrics")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		defer ctx.LogSignal(logger)

		return cli.Serve(ctx, cli.ServeOptions{Config: cfg, Logger: logger})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("store", "memory", "Snapshot store: memory, redis or sqlite")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics at /metrics")
}
