// Package sheets defines the outbound port for the spreadsheet ledger.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// LedgerWriter mirrors transactions into an external ledger, one row per
// transaction keyed by its ID.
type LedgerWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
	// RemoveTransaction is a no-op when no row carries id.
	RemoveTransaction(ctx context.Context, id int64) error
}
