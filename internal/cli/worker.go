package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func newWorkerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume transaction events and mirror them to Google Sheets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), opts)
		},
	}
}

func runWorker(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required to run the worker")
	}
	logger := setupLogger(cfg)

	ctx, stop := signalContext(ctx, logger)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	ledger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if ledger == nil {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, events will be acknowledged without export")
	}

	w := worker.NewExportWorker(ledger, logger)
	logger.Info("Starting export worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		log.FieldOperation, log.OpStartup)

	err = client.ConsumeTransactionEvents(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
		return nil
	}
	return err
}

// openLedger returns nil when no spreadsheet is configured.
func openLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.LedgerWriter, error) {
	if !cfg.SheetsEnabled() {
		return nil, nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init Google Sheets client: %w", err)
	}
	if err := client.EnsureHeader(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
