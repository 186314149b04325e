package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/storage/storagetest"
)

func TestStore_Repository(t *testing.T) {
	storagetest.Run(t, NewStore())
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().FetchTransactions(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
