package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository migrates the database at url and connects a pool to it.
func NewPostgresRepository(ctx context.Context, url string) (*PostgresRepository, error) {
	if err := RunPostgresMigrations(url); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanPgTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t    core.Transaction
		typ  string
		date time.Time
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Category, &t.Amount.Cents, &date, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TxType(typ)
	t.Date = core.DateOf(date)
	return t, nil
}

func (r *PostgresRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanPgTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}

func (r *PostgresRepository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 ORDER BY date DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txs, nil
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	t, err := scanPgTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensurePgCategory(ctx, tx, t.UserID, t.Category); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`INSERT INTO transactions (user_id, type, category, amount_cents, date, description)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			t.UserID, string(t.Type), t.Category, t.Amount.Cents, t.Date.Time, t.Description,
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", mapPgError(err))
	}
	return t, nil
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := ensurePgCategory(ctx, tx, t.UserID, t.Category); err != nil {
			return err
		}
		return tx.QueryRow(ctx,
			`UPDATE transactions
			 SET type = $1, category = $2, amount_cents = $3, date = $4, description = $5, updated_at = now()
			 WHERE id = $6 AND user_id = $7
			 RETURNING created_at, updated_at`,
			string(t.Type), t.Category, t.Amount.Cents, t.Date.Time, t.Description, t.ID, t.UserID,
		).Scan(&t.CreatedAt, &t.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, mapPgError(err))
	}
	return t, nil
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FetchCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *PostgresRepository) EnsureCategory(ctx context.Context, userID int64, name string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return ensurePgCategory(ctx, tx, userID, name)
	})
}

func ensurePgCategory(ctx context.Context, tx pgx.Tx, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO categories (user_id, name) VALUES ($1, $2) ON CONFLICT (user_id, name) DO NOTHING`, userID, name); err != nil {
		return fmt.Errorf("ensure category %q: %w", name, err)
	}
	return nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapPgError(err))
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var u core.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}
