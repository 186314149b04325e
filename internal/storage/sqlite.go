package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"fintrack/internal/core"
)

const sqliteTimeLayout = time.RFC3339Nano

const transactionColumns = `id, user_id, type, category, amount_cents, date, description, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dbPath, applies migrations and returns a ready
// repository. Foreign keys are enforced on every connection.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                core.Transaction
		typ, date        string
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.UserID, &typ, &t.Category, &t.Amount.Cents, &date, &t.Description, &created, &updated); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TxType(typ)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = d
	t.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
	t.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updated)
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanSQLiteTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) FetchTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	txs, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanSQLiteTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureSQLiteCategory(ctx, tx, t.UserID, t.Category); err != nil {
			return err
		}
		stamp := now.Format(sqliteTimeLayout)
		return tx.QueryRowContext(ctx,
			`INSERT INTO transactions (user_id, type, category, amount_cents, date, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			t.UserID, string(t.Type), t.Category, t.Amount.Cents, t.Date.String(), t.Description, stamp, stamp,
		).Scan(&t.ID)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", mapSQLiteError(err))
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	var created string
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureSQLiteCategory(ctx, tx, t.UserID, t.Category); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`UPDATE transactions
			 SET type = ?, category = ?, amount_cents = ?, date = ?, description = ?, updated_at = ?
			 WHERE id = ? AND user_id = ?
			 RETURNING created_at`,
			string(t.Type), t.Category, t.Amount.Cents, t.Date.String(), t.Description, now.Format(sqliteTimeLayout),
			t.ID, t.UserID,
		).Scan(&created)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, mapSQLiteError(err))
	}
	t.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
	t.UpdatedAt = now
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) FetchCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *SQLiteRepository) EnsureCategory(ctx context.Context, userID int64, name string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return ensureSQLiteCategory(ctx, tx, userID, name)
	})
}

func ensureSQLiteCategory(ctx context.Context, tx *sql.Tx, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (user_id, name) VALUES (?, ?) ON CONFLICT (user_id, name) DO NOTHING`, userID, name); err != nil {
		return fmt.Errorf("ensure category %q: %w", name, err)
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.CreatedAt.Format(sqliteTimeLayout),
	).Scan(&u.ID)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapSQLiteError(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *SQLiteRepository) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var (
		u       core.User
		created string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
	return u, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func mapSQLiteError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
