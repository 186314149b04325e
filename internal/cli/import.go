package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ofx"
)

// TransactionCreator is the part of services.TransactionService the
// importer uses.
type TransactionCreator interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Imported int
	Failed   int
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		email  string
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an OFX/QFX statement for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open statement: %w", err)
			}
			defer f.Close()

			if dryRun {
				txs, err := ofx.NewParser(logger).Parse(ctx, f, 0)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, renderTransactions(fmt.Sprintf("%d transactions in %s", len(txs), file), txs))
				return err
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

			a, err := buildApp(cfg, res, logger)
			if err != nil {
				return err
			}
			defer a.close()
			user, err := lookupUser(ctx, res.Repository, email)
			if err != nil {
				return err
			}

			txs, err := ofx.NewParser(logger).Parse(ctx, f, user.ID)
			if err != nil {
				return err
			}
			result := importTransactions(ctx, a.transactions, txs, logger)
			_, err = fmt.Fprintln(out, renderImportResult(file, result))
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user who owns the statement")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the OFX or QFX file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without storing")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsOneRequired("email", "dry-run")
	return cmd
}

// importTransactions stores every parsed row through the ledger service,
// carrying on past rows that fail validation.
func importTransactions(ctx context.Context, creator TransactionCreator, txs []core.Transaction, logger *log.Logger) ImportResult {
	var result ImportResult
	for _, t := range txs {
		if ctx.Err() != nil {
			result.Failed += len(txs) - result.Imported - result.Failed
			break
		}
		if _, err := creator.Create(ctx, t); err != nil {
			result.Failed++
			logger.WarnContext(ctx, "Skipping statement row",
				log.FieldTxDate, t.Date.String(),
				log.FieldCategory, t.Category,
				log.FieldError, err)
			continue
		}
		result.Imported++
	}
	logger.InfoContext(ctx, "Statement import finished",
		log.FieldOperation, log.OpImport,
		log.FieldCount, result.Imported,
		"failed", result.Failed)
	return result
}
