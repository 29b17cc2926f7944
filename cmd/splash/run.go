package main

import (
	"context"

	"github.com/aretw0/splash/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the splash screen in the terminal",
	Long: `Runs one staged-loading sequence. On a terminal it draws the live splash;
otherwise it prints one line per update. Press q or ctrl+c to stop early.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		report, _ := cmd.Flags().GetBool("report")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		defer ctx.LogSignal(logger)

		return cli.Run(ctx, cli.RunOptions{
			Config: cfg,
			Logger: logger,
			Out:    cmd.OutOrStdout(),
			Plain:  plain,
			Report: report,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Print plain progress lines even on a terminal")
	runCmd.Flags().Bool("report", false, "Print a Markdown summary when the splash ends")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
