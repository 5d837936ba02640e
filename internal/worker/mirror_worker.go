// Package worker keeps the ledger mirror in step with the transaction store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery/internal/amqp"
	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/sheets"
)

// TransactionReader is the read side of the store the worker needs.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	ListAll(ctx context.Context) ([]core.Transaction, error)
}

type MirrorWorker struct {
	store  TransactionReader
	mirror sheets.LedgerMirror
	logger *log.Logger
}

func NewMirrorWorker(store TransactionReader, mirror sheets.LedgerMirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &MirrorWorker{
		store:  store,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent applies one change event to the mirror. The row is always read
// back from the store, so stale or reordered events converge on the current state.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev amqp.TransactionEvent) error {
	if ev.Op == amqp.OpDeleted {
		if err := w.mirror.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove transaction %d from mirror: %w", ev.ID, err)
		}
		w.logger.InfoContext(ctx, "Removed transaction from mirror", log.FieldTransactionID, ev.ID)
		return nil
	}

	t, err := w.store.Get(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted after the event was published; the delete event will follow.
		w.logger.DebugContext(ctx, "Transaction gone before sync", log.FieldTransactionID, ev.ID, "op", ev.Op)
		return w.mirror.Remove(ctx, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", ev.ID, err)
	}

	if err := w.mirror.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert transaction %d into mirror: %w", ev.ID, err)
	}
	w.logger.InfoContext(ctx, "Synced transaction to mirror",
		log.NewFields().WithTransaction(t).WithOperation(string(ev.Op)).ToSlice()...)
	return nil
}

// Resync rewrites the whole mirror from the store.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	txns, err := w.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := w.mirror.ReplaceAll(ctx, txns); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirror resynced", log.FieldCount, len(txns))
	return nil
}

// RunResync resyncs once at startup and then every interval until ctx ends.
// Failures are logged and retried on the next tick. A non-positive interval
// only runs the startup pass.
func (w *MirrorWorker) RunResync(ctx context.Context, interval time.Duration) error {
	if err := w.Resync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup resync failed", log.FieldError, err)
	}
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", log.FieldError, err)
			}
		}
	}
}
