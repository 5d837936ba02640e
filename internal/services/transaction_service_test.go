package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bakery/internal/amqp"
	"bakery/internal/cache"
	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/storage/memory"
	"bakery/internal/summary"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev amqp.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) ops() []amqp.EventOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventOp, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Op
	}
	return out
}

// countingStore counts ListAll calls so cache hits are observable.
type countingStore struct {
	*memory.Store
	lists int
}

func (s *countingStore) ListAll(ctx context.Context) ([]core.Transaction, error) {
	s.lists++
	return s.Store.ListAll(ctx)
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func validFields() core.TransactionFields {
	return core.TransactionFields{
		Date:        core.NewDate(2024, 5, 1),
		Description: "Morning Sourdough Sales",
		Amount:      core.MoneyFromInt(450),
		Type:        core.Income,
		Category:    "Counter Sales",
	}
}

func TestTransactionService_CRUDPublishesEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), WithPublisher(pub), WithLogger(quietLogger()))

	created, err := svc.Create(ctx, validFields())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f := validFields()
	f.Amount = core.MoneyFromInt(500)
	updated, err := svc.Update(ctx, created.ID, f)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Amount.Equal(core.MoneyFromInt(500)) {
		t.Fatalf("Update returned %+v", updated)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []amqp.EventOp{amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted}
	got := pub.ops()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
	for _, ev := range pub.events {
		if ev.ID != created.ID {
			t.Fatalf("event for id %d, want %d", ev.ID, created.ID)
		}
	}
}

func TestTransactionService_Validation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), WithPublisher(pub), WithLogger(quietLogger()))

	tests := []struct {
		name   string
		mutate func(*core.TransactionFields)
		want   error
	}{
		{"blank description", func(f *core.TransactionFields) { f.Description = "  " }, core.ErrEmptyDescription},
		{"blank category", func(f *core.TransactionFields) { f.Category = "" }, core.ErrEmptyCategory},
		{"bad type", func(f *core.TransactionFields) { f.Type = "transfer" }, core.ErrInvalidType},
		{"negative amount", func(f *core.TransactionFields) { f.Amount = core.MoneyFromInt(-1) }, core.ErrInvalidAmount},
		{"missing date", func(f *core.TransactionFields) { f.Date = core.Date{} }, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			if _, err := svc.Create(ctx, f); !errors.Is(err, tt.want) {
				t.Fatalf("Create error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(pub.ops()) != 0 {
		t.Fatalf("rejected writes must not publish, got %v", pub.ops())
	}
}

func TestTransactionService_NotFound(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewTransactionService(memory.New(), WithPublisher(pub), WithLogger(quietLogger()))

	if _, err := svc.Update(ctx, 42, validFields()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Update unknown = %v", err)
	}
	if err := svc.Delete(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Delete unknown = %v", err)
	}
	if err := svc.Delete(ctx, 0); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Delete id 0 = %v", err)
	}
	if len(pub.ops()) != 0 {
		t.Fatalf("failed writes must not publish, got %v", pub.ops())
	}
}

func TestTransactionService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(), WithPublisher(pub), WithLogger(quietLogger()))

	if _, err := svc.Create(ctx, validFields()); err != nil {
		t.Fatalf("Create should succeed when publishing fails: %v", err)
	}
	txns, _ := svc.ListAll(ctx)
	if len(txns) != 1 {
		t.Fatalf("row should be stored, got %d", len(txns))
	}
}

func TestTransactionService_ListCache(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.New()}
	lru := cache.NewLRUCache[[]core.Transaction](4, time.Minute)
	svc := NewTransactionService(store, WithCache(lru), WithLogger(quietLogger()))

	svc.ListAll(ctx)
	svc.ListAll(ctx)
	if store.lists != 1 {
		t.Fatalf("second list should hit the cache, store listed %d times", store.lists)
	}

	if _, err := svc.Create(ctx, validFields()); err != nil {
		t.Fatal(err)
	}
	txns, _ := svc.ListAll(ctx)
	if store.lists != 2 || len(txns) != 1 {
		t.Fatalf("create should invalidate the cache: lists=%d rows=%d", store.lists, len(txns))
	}
}

func TestTransactionService_Dashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	svc := NewTransactionService(memory.New(), WithLogger(quietLogger()), WithClock(func() time.Time { return now }))

	seeded, err := svc.SeedIfEmpty(ctx)
	if err != nil || !seeded {
		t.Fatalf("SeedIfEmpty = %v, %v", seeded, err)
	}

	d, err := svc.Dashboard(ctx, svc.DefaultView())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Month != "2024-05" || len(d.Transactions) != 3 {
		t.Fatalf("unexpected dashboard header %s / %d rows", d.Month, len(d.Transactions))
	}
	if !d.Stats.Profit.Equal(core.MoneyFromFloat(244.5)) {
		t.Fatalf("profit = %s, want 244.50", d.Stats.Profit)
	}
	if d.DayOverDay.Growth.Income != 100 {
		t.Fatalf("income growth vs empty yesterday = %v, want 100", d.DayOverDay.Growth.Income)
	}

	expOnly, err := svc.Dashboard(ctx, summary.View{Month: summary.MonthOf(now), Type: summary.FilterExpense})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(expOnly.Transactions) != 2 || !expOnly.Stats.Income.Equal(core.MoneyFromInt(450)) {
		t.Fatalf("type filter should only narrow the list: %d rows, income %s",
			len(expOnly.Transactions), expOnly.Stats.Income)
	}
}
