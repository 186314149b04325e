// Package analytics derives dashboard aggregates and insights from one
// immutable snapshot of a user's transactions.
//
// Every aggregate is a pure method on Snapshot. Callers fetch the complete
// history once, wrap it with NewSnapshot and compute everything from that
// value, so no two aggregates can disagree about the underlying data.
package analytics

import (
	"sort"

	"fintrack/internal/core"
)

// Snapshot is a point-in-time, date-ordered copy of one user's transactions.
type Snapshot struct {
	txs  []core.Transaction
	asOf core.Date
}

// NewSnapshot copies txs and orders the copy by (date, id). asOf is the
// reference "today" for month-to-date rules; a zero asOf falls back to the
// latest transaction date.
func NewSnapshot(txs []core.Transaction, asOf core.Date) Snapshot {
	cp := make([]core.Transaction, len(txs))
	copy(cp, txs)
	sort.SliceStable(cp, func(i, j int) bool {
		if !cp[i].Date.Equal(cp[j].Date) {
			return cp[i].Date.Before(cp[j].Date)
		}
		return cp[i].ID < cp[j].ID
	})

	if asOf.IsZero() && len(cp) > 0 {
		asOf = cp[len(cp)-1].Date
	}
	return Snapshot{txs: cp, asOf: asOf}
}

// Len returns the number of transactions in the snapshot.
func (s Snapshot) Len() int {
	return len(s.txs)
}

// AsOf returns the reference date used by month-to-date computations.
func (s Snapshot) AsOf() core.Date {
	return s.asOf
}

// Transactions returns a copy of the ordered transactions.
func (s Snapshot) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

func (s Snapshot) hasExpenses() bool {
	for _, t := range s.txs {
		if t.IsExpense() {
			return true
		}
	}
	return false
}

// expenseDays sums expenses per calendar date, ascending.
func (s Snapshot) expenseDays() []RollingPoint {
	days := []RollingPoint{}
	for _, t := range s.txs {
		if !t.IsExpense() {
			continue
		}
		if n := len(days); n == 0 || !days[n-1].Date.Equal(t.Date) {
			days = append(days, RollingPoint{Date: t.Date})
		}
		last := &days[len(days)-1]
		last.Sum = last.Sum.Add(t.Amount)
	}
	return days
}
