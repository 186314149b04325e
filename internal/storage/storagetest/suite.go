// Package storagetest holds behaviour checks shared by every
// storage.Repository implementation.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Run exercises repo through the full Repository contract. The repository
// must start empty.
func Run(t *testing.T, repo storage.Repository) {
	t.Helper()
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, core.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotZero(t, alice.ID)
	bob, err := repo.CreateUser(ctx, core.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	t.Run("users", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, core.User{Name: "Alice 2", Email: "alice@example.com", PasswordHash: "x"})
		assert.ErrorIs(t, err, storage.ErrConflict)

		got, err := repo.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		assert.Equal(t, "Alice", got.Name)

		got, err = repo.GetUserByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", got.Email)

		_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = repo.GetUserByID(ctx, 999999)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	mk := func(user int64, date string, typ core.TxType, category string, cents int64, desc string) core.Transaction {
		d, err := core.ParseDate(date)
		require.NoError(t, err)
		created, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: user, Type: typ, Category: category, Amount: core.Money{Cents: cents}, Date: d, Description: desc,
		})
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		return created
	}

	lunch := mk(alice.ID, "2024-01-02", core.Expense, "Food", 1250, "Lunch")
	salary := mk(alice.ID, "2024-01-01", core.Income, "Salary", 300000, "")
	rent := mk(alice.ID, "2024-01-02", core.Expense, "Rent", 90000, "January rent")
	mk(bob.ID, "2024-01-01", core.Expense, "Games", 5000, "")

	t.Run("fetch is user scoped and ordered", func(t *testing.T) {
		txs, err := repo.FetchTransactions(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, []int64{salary.ID, lunch.ID, rent.ID}, []int64{txs[0].ID, txs[1].ID, txs[2].ID})
		assert.Equal(t, "2024-01-02", txs[1].Date.String())
		assert.Equal(t, int64(1250), txs[1].Amount.Cents)
		assert.Equal(t, core.Expense, txs[1].Type)
		assert.Equal(t, "Lunch", txs[1].Description)

		none, err := repo.FetchTransactions(ctx, 424242)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("recent", func(t *testing.T) {
		txs, err := repo.RecentTransactions(ctx, alice.ID, 2)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, rent.ID, txs[0].ID)
		assert.Equal(t, lunch.ID, txs[1].ID)
	})

	t.Run("categories created implicitly", func(t *testing.T) {
		cats, err := repo.FetchCategories(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Food", "Rent", "Salary"}, cats)

		require.NoError(t, repo.EnsureCategory(ctx, alice.ID, "Books"))
		require.NoError(t, repo.EnsureCategory(ctx, alice.ID, "Books"))
		cats, err = repo.FetchCategories(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Books", "Food", "Rent", "Salary"}, cats)

		cats, err = repo.FetchCategories(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Games"}, cats)
	})

	t.Run("get and update", func(t *testing.T) {
		got, err := repo.GetTransaction(ctx, alice.ID, lunch.ID)
		require.NoError(t, err)
		assert.Equal(t, "Food", got.Category)

		_, err = repo.GetTransaction(ctx, bob.ID, lunch.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		got.Category = "Eating Out"
		got.Amount = core.Money{Cents: 1500}
		updated, err := repo.UpdateTransaction(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), updated.Amount.Cents)

		reread, err := repo.GetTransaction(ctx, alice.ID, lunch.ID)
		require.NoError(t, err)
		assert.Equal(t, "Eating Out", reread.Category)
		assert.Equal(t, int64(1500), reread.Amount.Cents)

		cats, err := repo.FetchCategories(ctx, alice.ID)
		require.NoError(t, err)
		assert.Contains(t, cats, "Eating Out")

		foreign := got
		foreign.UserID = bob.ID
		_, err = repo.UpdateTransaction(ctx, foreign)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteTransaction(ctx, bob.ID, rent.ID), storage.ErrNotFound)
		require.NoError(t, repo.DeleteTransaction(ctx, alice.ID, rent.ID))
		assert.ErrorIs(t, repo.DeleteTransaction(ctx, alice.ID, rent.ID), storage.ErrNotFound)

		txs, err := repo.FetchTransactions(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
