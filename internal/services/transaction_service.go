package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery/internal/amqp"
	"bakery/internal/cache"
	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/storage"
	"bakery/internal/summary"
)

// listCacheKey holds the full ordered transaction list.
const listCacheKey = "transactions:all"

// EventPublisher announces committed mutations.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev amqp.TransactionEvent) error
}

// TransactionService validates input, writes through to the store, keeps the
// list cache coherent and publishes change events. Cache and publish failures
// are logged and never fail a mutation that has already been stored.
type TransactionService struct {
	store     storage.TransactionStore
	cache     cache.Cache[[]core.Transaction]
	publisher EventPublisher
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

type Option func(*TransactionService)

func WithCache(c cache.Cache[[]core.Transaction]) Option {
	return func(s *TransactionService) { s.cache = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *TransactionService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *TransactionService) { s.logger = l }
}

// WithClock overrides the source of "now" used for day-over-day growth.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

func NewTransactionService(store storage.TransactionStore, opts ...Option) *TransactionService {
	s := &TransactionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentTransaction)
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// ListAll returns every transaction, date then id descending.
func (s *TransactionService) ListAll(ctx context.Context) ([]core.Transaction, error) {
	if s.cache != nil {
		txns, ok, err := s.cache.Get(ctx, listCacheKey)
		if err != nil {
			s.logger.WarnContext(ctx, "List cache read failed", log.FieldError, err)
		} else if ok {
			return txns, nil
		}
	}

	txns, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listCacheKey, txns); err != nil {
			s.logger.WarnContext(ctx, "List cache write failed", log.FieldError, err)
		}
	}
	return txns, nil
}

func (s *TransactionService) Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error) {
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.store.Create(ctx, f)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterWrite(ctx, log.OpCreate, amqp.OpCreated, t)
	return t, nil
}

// Update replaces every field of transaction id.
func (s *TransactionService) Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error) {
	if id <= 0 {
		return core.Transaction{}, fmt.Errorf("%w: id %d", core.ErrNotFound, id)
	}
	if err := f.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.store.Update(ctx, id, f)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterWrite(ctx, log.OpUpdate, amqp.OpUpdated, t)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id %d", core.ErrNotFound, id)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, log.OpDelete, amqp.OpDeleted, core.Transaction{ID: id})
	return nil
}

func (s *TransactionService) afterWrite(ctx context.Context, logOp string, evOp amqp.EventOp, t core.Transaction) {
	if logOp == log.OpDelete {
		s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, t.ID, log.FieldOperation, logOp)
	} else {
		s.events.LogTransaction(ctx, logOp, t)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, listCacheKey); err != nil {
			s.events.LogError(ctx, "List cache invalidation failed", err, log.ComponentCache, logOp,
				log.NewFields().WithTransactionID(t.ID))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(t.ID, evOp)); err != nil {
			s.events.LogError(ctx, "Failed to publish transaction event", err, log.ComponentAMQP, logOp,
				log.NewFields().WithTransactionID(t.ID))
		}
	}
}

// Dashboard builds the aggregated view over the full list.
func (s *TransactionService) Dashboard(ctx context.Context, v summary.View) (summary.Dashboard, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return summary.Dashboard{}, err
	}
	return summary.BuildDashboard(all, v, s.now()), nil
}

// DefaultView is the current month with every type listed.
func (s *TransactionService) DefaultView() summary.View {
	return summary.DefaultView(s.now())
}

// SeedIfEmpty writes the sample rows dated today when the store is empty.
func (s *TransactionService) SeedIfEmpty(ctx context.Context) (bool, error) {
	seeded, err := storage.SeedIfEmpty(ctx, s.store, core.DateOf(s.now()))
	if err != nil {
		return false, err
	}
	if seeded && s.cache != nil {
		if err := s.cache.Delete(ctx, listCacheKey); err != nil {
			s.logger.WarnContext(ctx, "List cache invalidation failed", log.FieldError, err, log.FieldOperation, log.OpSeed)
		}
	}
	return seeded, nil
}

func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the store.
func (s *TransactionService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
