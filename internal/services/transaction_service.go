package services

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultListLimit caps GET /api/transactions when no limit is given.
const DefaultListLimit = 100

// EventPublisher is the outgoing side of the ledger event stream.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// ReportInvalidator drops whatever derived data is cached for a user.
type ReportInvalidator interface {
	Invalidate(userID int64)
}

// TransactionService orchestrates ledger writes: validation, persistence,
// cache invalidation and change events, in that order.
type TransactionService struct {
	repo        storage.Repository
	publisher   EventPublisher
	invalidator ReportInvalidator
	logger      *log.Logger
}

func NewTransactionService(repo storage.Repository, publisher EventPublisher, invalidator ReportInvalidator, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		repo:        repo,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentLedger),
	}
}

func normalize(t core.Transaction) core.Transaction {
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	return t
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = normalize(t)
	t.ID = 0
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.afterWrite(ctx, log.OpCreate, amqp.EventCreated, created)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = normalize(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.afterWrite(ctx, log.OpUpdate, amqp.EventUpdated, updated)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.afterWrite(ctx, log.OpDelete, amqp.EventDeleted, core.Transaction{ID: id, UserID: userID})
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// List returns up to limit transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.repo.RecentTransactions(ctx, userID, limit)
}

func (s *TransactionService) Categories(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.FetchCategories(ctx, userID)
}

// afterWrite never fails the request: the row is already committed.
func (s *TransactionService) afterWrite(ctx context.Context, op string, kind amqp.EventKind, t core.Transaction) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(t.UserID)
	}

	log.NewStructuredLogger(s.logger).LogTransactionSaved(ctx, op, t.UserID, t.ID,
		string(t.Type), t.Category, t.Amount.Cents, t.Date.String())

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(kind, t)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldTransactionID, t.ID,
			log.FieldEventKind, string(kind),
			log.FieldError, err)
	}
}
