package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bakery/internal/core"
	"bakery/internal/storage"
	"bakery/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.TransactionStore { return New() })
}

func TestStoreRejectsInvalidFields(t *testing.T) {
	s := New()
	_, err := s.Create(context.Background(), core.TransactionFields{
		Date:     core.NewDate(2024, 5, 1),
		Amount:   core.MoneyFromInt(1),
		Type:     core.Income,
		Category: "Counter Sales",
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if n, _ := s.Count(context.Background()); n != 0 {
		t.Fatalf("invalid row was stored")
	}
}

func TestStoreConcurrentCreatesGetDistinctIDs(t *testing.T) {
	s := New()
	f := core.TransactionFields{
		Date:        core.NewDate(2024, 5, 1),
		Description: "Baguette",
		Amount:      core.MoneyFromInt(3),
		Type:        core.Income,
		Category:    "Counter Sales",
	}

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.Create(context.Background(), f)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- tx.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 ids, got %d", len(seen))
	}
}
