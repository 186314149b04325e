// Package worker consumes transaction events and mirrors them into the
// spreadsheet ledger.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// TransactionReader is the slice of storage.Repository the backfill needs.
type TransactionReader interface {
	FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
}

// ExportWorker applies transaction events to a ledger.
type ExportWorker struct {
	ledger sheets.LedgerWriter
	logger *log.Logger
}

// NewExportWorker creates a worker. A nil ledger turns every event into a
// logged no-op so the queue still drains.
func NewExportWorker(ledger sheets.LedgerWriter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent matches amqp.Handler. A returned error requeues the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	logger := w.logger.With(
		log.FieldEventKind, string(ev.Kind),
		log.FieldTransactionID, ev.TransactionID,
		log.FieldUserID, ev.UserID)

	if w.ledger == nil {
		logger.WarnContext(ctx, "No ledger configured, skipping event")
		return nil
	}

	switch ev.Kind {
	case amqp.EventCreated:
		if err := w.ledger.AppendTransaction(ctx, *ev.Transaction); err != nil {
			return fmt.Errorf("append transaction %d: %w", ev.TransactionID, err)
		}
	case amqp.EventUpdated:
		// Remove first so a redelivered update never leaves two rows.
		if err := w.ledger.RemoveTransaction(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("remove stale row for transaction %d: %w", ev.TransactionID, err)
		}
		if err := w.ledger.AppendTransaction(ctx, *ev.Transaction); err != nil {
			return fmt.Errorf("append updated transaction %d: %w", ev.TransactionID, err)
		}
	case amqp.EventDeleted:
		if err := w.ledger.RemoveTransaction(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("remove transaction %d: %w", ev.TransactionID, err)
		}
	default:
		logger.WarnContext(ctx, "Ignoring unknown event kind")
		return nil
	}

	logger.InfoContext(ctx, "Exported transaction event", log.FieldOperation, log.OpExport)
	return nil
}

// Backfill rewrites every transaction of userID into the ledger. Existing
// rows are removed first, so running it twice is harmless. It returns the
// number of rows written; on error the count covers the rows written so far.
func (w *ExportWorker) Backfill(ctx context.Context, reader TransactionReader, userID int64) (int, error) {
	if w.ledger == nil {
		return 0, fmt.Errorf("no ledger configured")
	}

	txs, err := reader.FetchTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("fetch transactions for user %d: %w", userID, err)
	}

	w.logger.InfoContext(ctx, "Starting ledger backfill",
		log.FieldUserID, userID,
		log.FieldCount, len(txs))

	written := 0
	for _, t := range txs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.ledger.RemoveTransaction(ctx, t.ID); err != nil {
			return written, fmt.Errorf("remove transaction %d: %w", t.ID, err)
		}
		if err := w.ledger.AppendTransaction(ctx, t); err != nil {
			return written, fmt.Errorf("append transaction %d: %w", t.ID, err)
		}
		written++
	}

	w.logger.InfoContext(ctx, "Ledger backfill completed",
		log.FieldUserID, userID,
		log.FieldCount, written)
	return written, nil
}
