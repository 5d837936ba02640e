// Package storage persists transactions. The SQLite store lives here; the
// postgres and memory subpackages provide the same contract on other engines.
package storage

import (
	"context"

	"bakery/internal/core"
)

// TransactionStore is the persistence contract shared by every backend.
//
// ListAll orders by date descending, then id descending. Update and Delete
// return core.ErrNotFound when no row has the given id. Each call is a single
// independent statement; there is no batching and no concurrency token.
type TransactionStore interface {
	ListAll(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error)
	Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
