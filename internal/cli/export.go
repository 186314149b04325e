package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Rewrite a user's transactions into the Google Sheets ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)
			ctx := cmd.Context()

			ledger, err := openLedger(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if ledger == nil {
				return errors.New("GOOGLE_SPREADSHEET_ID is required to export")
			}

			res, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					logger.Error("Backend cleanup failed", log.FieldError, err)
				}
			}()

			user, err := lookupUser(ctx, res.Repository, email)
			if err != nil {
				return err
			}

			n, err := worker.NewExportWorker(ledger, logger).Backfill(ctx, res.Repository, user.ID)
			if err != nil {
				return fmt.Errorf("export stopped after %d rows: %w", n, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Exported %d transactions for %s", n, user.Email)))
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to export")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
