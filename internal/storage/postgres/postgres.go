// Package postgres is the PostgreSQL TransactionStore, using pgx through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"bakery/internal/core"
	"bakery/internal/storage"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		date DATE NOT NULL,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		type VARCHAR(20) NOT NULL CHECK (type IN ('income', 'expense')),
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date_id ON transactions (date DESC, id DESC);
`

const columns = `id, date, description, amount::text, type, category`

// Options tune the startup connection loop.
type Options struct {
	ConnectRetries int
	RetryDelay     time.Duration
}

func DefaultOptions() Options {
	return Options{ConnectRetries: 30, RetryDelay: 2 * time.Second}
}

type Repository struct {
	db *sql.DB
}

var _ storage.TransactionStore = (*Repository)(nil)

// NormalizeURL rewrites postgresql:// to postgres:// and defaults sslmode to disable.
func NormalizeURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}

// Open connects, waiting for the server to accept connections, and ensures the schema.
func Open(ctx context.Context, databaseURL string, opts Options) (*Repository, error) {
	config, err := pgx.ParseConfig(NormalizeURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.ConnectRetries < 1 {
		opts.ConnectRetries = 1
	}

	db := stdlib.OpenDB(*config)
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= opts.ConnectRetries {
			db.Close()
			return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
		}
		slog.WarnContext(ctx, "Database not ready, retrying",
			"attempt", attempt,
			"max_attempts", opts.ConnectRetries,
			"retry_in", opts.RetryDelay,
			"error", err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	slog.InfoContext(ctx, "PostgreSQL connection established", "host", config.Host, "database", config.Database)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.Type, &t.Category)
	return t, err
}

func (r *Repository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM transactions ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (date, description, amount, type, category)
		 VALUES ($1::date, $2, $3::numeric, $4, $5)
		 RETURNING `+columns,
		f.Date.String(), f.Description, f.Amount.Decimal().String(), string(f.Type), f.Category)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE transactions
		 SET date = $1::date, description = $2, amount = $3::numeric, type = $4, category = $5
		 WHERE id = $6
		 RETURNING `+columns,
		f.Date.String(), f.Description, f.Amount.Decimal().String(), string(f.Type), f.Category, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return storage.RequireOneRow(res)
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
