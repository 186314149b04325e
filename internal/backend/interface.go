package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

// CleanupFunc releases whatever the backend opened.
type CleanupFunc func() error

// BackendResult contains the repository, the optional event publisher and
// the cleanup function that closes both.
type BackendResult struct {
	Repository storage.Repository
	Publisher  *amqp.Client
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string

	// Empty AMQPURL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
