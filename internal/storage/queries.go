package storage

import (
	"context"
	"database/sql"

	"bakery/internal/core"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type CreateTransactionParams struct {
	Date        core.Date
	Description string
	Amount      core.Money
	Type        core.TxType
	Category    string
}

type UpdateTransactionParams struct {
	ID          int64
	Date        core.Date
	Description string
	Amount      core.Money
	Type        core.TxType
	Category    string
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var t core.Transaction
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.Type, &t.Category)
	return t, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, date, description, amount, type, category
FROM transactions
ORDER BY date DESC, id DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, date, description, amount, type, category
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (date, description, amount, type, category)
VALUES (?, ?, ?, ?, ?)
RETURNING id, date, description, amount, type, category
`

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Date,
		arg.Description,
		arg.Amount,
		string(arg.Type),
		arg.Category,
	)
	return scanTransaction(row)
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET date = ?, description = ?, amount = ?, type = ?, category = ?
WHERE id = ?
RETURNING id, date, description, amount, type, category
`

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Date,
		arg.Description,
		arg.Amount,
		string(arg.Type),
		arg.Category,
		arg.ID,
	)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execresult
DELETE FROM transactions
WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (sql.Result, error) {
	return q.db.ExecContext(ctx, deleteTransaction, id)
}

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions
`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}
