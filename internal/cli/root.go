package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd assembles the fintrack command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fintrack",
		Short:         "Personal finance tracking and analytics",
		Long:          "fintrack records income and expenses, serves the JSON API, and derives spending analytics.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file (overrides FINTRACK_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(opts),
		newWorkerCmd(opts),
		newMigrateCmd(opts),
		newReportCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// Execute runs the command line until ctx is canceled.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
