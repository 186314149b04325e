// Package memory is a process-local storage.Repository, used by tests and
// by DATA_BACKEND=memory.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu           sync.RWMutex
	nextTxID     int64
	nextUserID   int64
	transactions map[int64]core.Transaction
	categories   map[int64]map[string]struct{}
	users        map[int64]core.User
	emails       map[string]int64
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[int64]core.Transaction),
		categories:   make(map[int64]map[string]struct{}),
		users:        make(map[int64]core.User),
		emails:       make(map[string]int64),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

func (s *Store) userTransactions(userID int64) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.userTransactions(userID)
	slices.SortFunc(out, func(a, b core.Transaction) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.userTransactions(userID)
	slices.SortFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxID++
	now := time.Now().UTC()
	t.ID = s.nextTxID
	t.CreatedAt, t.UpdatedAt = now, now
	s.transactions[t.ID] = t
	s.ensureCategory(t.UserID, t.Category)
	return t, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return core.Transaction{}, storage.ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	s.transactions[t.ID] = t
	s.ensureCategory(t.UserID, t.Category)
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) FetchCategories(ctx context.Context, userID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.categories[userID]))
	for name := range s.categories[userID] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) EnsureCategory(ctx context.Context, userID int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCategory(userID, name)
	return nil
}

// caller holds s.mu
func (s *Store) ensureCategory(userID int64, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	set, ok := s.categories[userID]
	if !ok {
		set = make(map[string]struct{})
		s.categories[userID] = set
	}
	set[name] = struct{}{}
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[u.Email]; taken {
		return core.User{}, storage.ErrConflict
	}
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

var _ storage.Repository = (*Store)(nil)
