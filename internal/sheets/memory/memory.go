// Package memory is an in-process sheets.LedgerWriter for tests and dry runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, t)
	return nil
}

func (l *Ledger) RemoveTransaction(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = slices.DeleteFunc(l.rows, func(t core.Transaction) bool { return t.ID == id })
	return nil
}

// Rows returns a copy of the ledger in append order.
func (l *Ledger) Rows() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.rows)
}
