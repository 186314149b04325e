package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	require.NoError(t, l.AppendTransaction(ctx, core.Transaction{ID: 1, Category: "Food"}))
	require.NoError(t, l.AppendTransaction(ctx, core.Transaction{ID: 2, Category: "Rent"}))
	require.NoError(t, l.RemoveTransaction(ctx, 1))
	require.NoError(t, l.RemoveTransaction(ctx, 99))

	rows := l.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ID)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, l.AppendTransaction(canceled, core.Transaction{ID: 3}), context.Canceled)
}
