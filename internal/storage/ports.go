package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// TransactionReader is the analytics snapshot source. FetchTransactions
// returns the complete history of one user from a single query.
type TransactionReader interface {
	FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	// RecentTransactions orders by date then id, newest first.
	RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
}

// TransactionWriter writes are scoped to tx.UserID. Create and Update make
// sure the category exists for that user.
type TransactionWriter interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
}

type CategoryStore interface {
	// FetchCategories returns category names sorted ascending.
	FetchCategories(ctx context.Context, userID int64) ([]string, error)
	EnsureCategory(ctx context.Context, userID int64, name string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	GetUserByID(ctx context.Context, id int64) (core.User, error)
}

// Repository is everything a backend provides.
type Repository interface {
	TransactionReader
	TransactionWriter
	CategoryStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
