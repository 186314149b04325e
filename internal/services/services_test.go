package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) kinds() []amqp.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.EventKind, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[int64]int
}

func (c *countingInvalidator) Invalidate(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[int64]int)
	}
	c.calls[userID]++
}

// countingStore counts snapshot fetches so tests can see cache hits.
type countingStore struct {
	*memory.Store
	mu      sync.Mutex
	fetches int
	delay   time.Duration
	failing error
	hold    *fetchHold
}

// fetchHold parks the first fetch after it has read the store, until
// release is closed.
type fetchHold struct {
	fetched chan struct{}
	release chan struct{}
	used    bool
}

func newFetchHold() *fetchHold {
	return &fetchHold{fetched: make(chan struct{}), release: make(chan struct{})}
}

func (c *countingStore) FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	c.mu.Lock()
	c.fetches++
	delay, failing := c.delay, c.failing
	c.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if failing != nil {
		return nil, failing
	}
	txs, err := c.Store.FetchTransactions(ctx, userID)

	c.mu.Lock()
	h := c.hold
	first := h != nil && !h.used
	if first {
		h.used = true
	}
	c.mu.Unlock()
	if first {
		close(h.fetched)
		<-h.release
	}
	return txs, err
}

func (c *countingStore) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func newReportCache(t *testing.T) *cache.TTLCache[int64, analytics.Report] {
	t.Helper()
	c, err := cache.NewTTLCache[int64, analytics.Report](cache.Config[analytics.Report]{
		MaxCost: 1 << 20,
		TTL:     time.Minute,
		Cost:    ReportCost,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func expense(userID int64, date string, category string, cents int64, desc string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		UserID: userID, Type: core.Expense, Category: category,
		Amount: core.Money{Cents: cents}, Date: d, Description: desc,
	}
}

var errBoom = errors.New("boom")
