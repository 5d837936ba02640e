// Package storagetest holds the behavior every storage.TransactionStore must
// share, run against each backend from its own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"bakery/internal/core"
	"bakery/internal/storage"
)

func fields(date, desc string, amount string, typ core.TxType, category string) core.TransactionFields {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	m, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	return core.TransactionFields{Date: d, Description: desc, Amount: m, Type: typ, Category: category}
}

func sameFields(a, b core.TransactionFields) bool {
	return a.Date.Equal(b.Date) &&
		a.Description == b.Description &&
		a.Amount.Equal(b.Amount) &&
		a.Type == b.Type &&
		a.Category == b.Category
}

func mustList(t *testing.T, s storage.TransactionStore) []core.Transaction {
	t.Helper()
	txns, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	return txns
}

// Run exercises the TransactionStore contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.TransactionStore) {
	t.Run("empty", func(t *testing.T) {
		s := newStore(t)
		if txns := mustList(t, s); len(txns) != 0 {
			t.Fatalf("expected empty store, got %d rows", len(txns))
		}
		n, err := s.Count(context.Background())
		if err != nil || n != 0 {
			t.Fatalf("Count = %d, %v", n, err)
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})

	t.Run("create then list", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		seen := map[int64]bool{}
		inputs := []core.TransactionFields{
			fields("2024-05-01", "Morning Sourdough Sales", "450", core.Income, "Counter Sales"),
			fields("2024-05-01", "Flour (50kg)", "120", core.Expense, "Ingredients"),
			fields("2024-04-30", "Butter & Eggs", "85.50", core.Expense, "Ingredients"),
			fields("2024-05-02", "Free sample", "0", core.Expense, "Other"),
		}
		for _, in := range inputs {
			created, err := s.Create(ctx, in)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if created.ID == 0 || seen[created.ID] {
				t.Fatalf("id %d is not new", created.ID)
			}
			seen[created.ID] = true
			if !sameFields(created.Fields(), in) {
				t.Fatalf("Create returned %+v, want %+v", created.Fields(), in)
			}

			matches := 0
			for _, row := range mustList(t, s) {
				if row.ID == created.ID {
					matches++
					if !sameFields(row.Fields(), in) {
						t.Fatalf("stored %+v, want %+v", row.Fields(), in)
					}
				}
			}
			if matches != 1 {
				t.Fatalf("expected exactly one row with id %d, got %d", created.ID, matches)
			}
		}

		n, _ := s.Count(ctx)
		if n != int64(len(inputs)) {
			t.Fatalf("Count = %d, want %d", n, len(inputs))
		}
	})

	t.Run("list order", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a, _ := s.Create(ctx, fields("2024-05-01", "a", "1", core.Income, "Counter Sales"))
		b, _ := s.Create(ctx, fields("2024-05-03", "b", "1", core.Income, "Counter Sales"))
		c, _ := s.Create(ctx, fields("2024-05-01", "c", "1", core.Expense, "Labor"))
		d, _ := s.Create(ctx, fields("2023-12-31", "d", "1", core.Expense, "Labor"))

		want := []int64{b.ID, c.ID, a.ID, d.ID}
		got := mustList(t, s)
		if len(got) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("position %d: want id %d, got %d", i, want[i], got[i].ID)
			}
		}
	})

	t.Run("update replaces one row", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		keep, _ := s.Create(ctx, fields("2024-05-01", "keep", "10", core.Income, "Wholesale"))
		target, _ := s.Create(ctx, fields("2024-05-01", "old", "20", core.Expense, "Labor"))

		next := fields("2024-06-15", "new", "33.25", core.Income, "Catering")
		updated, err := s.Update(ctx, target.ID, next)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != target.ID || !sameFields(updated.Fields(), next) {
			t.Fatalf("Update returned %+v", updated)
		}

		for _, row := range mustList(t, s) {
			switch row.ID {
			case target.ID:
				if !sameFields(row.Fields(), next) {
					t.Fatalf("updated row = %+v", row.Fields())
				}
			case keep.ID:
				if !sameFields(row.Fields(), keep.Fields()) {
					t.Fatalf("untouched row changed: %+v", row.Fields())
				}
			default:
				t.Fatalf("unexpected id %d", row.ID)
			}
		}

		got, err := s.Get(ctx, target.ID)
		if err != nil || !sameFields(got.Fields(), next) {
			t.Fatalf("Get = %+v, %v", got, err)
		}
	})

	t.Run("amounts round-trip exactly", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, amount := range []string{"0.01", "12.34", "85.50", "999999999999.99"} {
			in := fields("2024-05-01", "round trip", amount, core.Expense, "Equipment")
			created, err := s.Create(ctx, in)
			if err != nil {
				t.Fatalf("Create %s: %v", amount, err)
			}
			updated, err := s.Update(ctx, created.ID, in)
			if err != nil {
				t.Fatalf("Update %s: %v", amount, err)
			}
			stored, err := s.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get %s: %v", amount, err)
			}
			for name, got := range map[string]core.Money{"created": created.Amount, "updated": updated.Amount, "stored": stored.Amount} {
				if !got.Equal(in.Amount) {
					t.Fatalf("%s amount = %s, want %s", name, got, in.Amount)
				}
			}
		}

		// Anything finer than cents never reaches a store.
		if _, err := core.ParseMoney("12.345"); !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("ParseMoney(12.345) = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("delete removes one row", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a, _ := s.Create(ctx, fields("2024-05-01", "a", "1", core.Income, "Counter Sales"))
		b, _ := s.Create(ctx, fields("2024-05-01", "b", "2", core.Expense, "Ingredients"))

		if err := s.Delete(ctx, a.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		rows := mustList(t, s)
		if len(rows) != 1 || rows[0].ID != b.ID {
			t.Fatalf("unexpected rows after delete: %+v", rows)
		}
		if _, err := s.Get(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get deleted = %v, want ErrNotFound", err)
		}

		c, _ := s.Create(ctx, fields("2024-05-02", "c", "3", core.Income, "Wholesale"))
		if c.ID == a.ID || c.ID == b.ID {
			t.Fatalf("id %d was reused", c.ID)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		existing, _ := s.Create(ctx, fields("2024-05-01", "a", "1", core.Income, "Counter Sales"))
		missing := existing.ID + 1000

		if _, err := s.Update(ctx, missing, existing.Fields()); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Update unknown id = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, missing); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Delete unknown id = %v, want ErrNotFound", err)
		}
		if _, err := s.Get(ctx, missing); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get unknown id = %v, want ErrNotFound", err)
		}
		if rows := mustList(t, s); len(rows) != 1 {
			t.Fatalf("expected store untouched, got %d rows", len(rows))
		}
	})

	t.Run("seed if empty", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		day := core.NewDate(2024, 5, 1)

		seeded, err := storage.SeedIfEmpty(ctx, s, day)
		if err != nil || !seeded {
			t.Fatalf("SeedIfEmpty = %v, %v", seeded, err)
		}
		rows := mustList(t, s)
		if len(rows) != 3 {
			t.Fatalf("expected 3 sample rows, got %d", len(rows))
		}
		for _, r := range rows {
			if !r.Date.Equal(day) {
				t.Fatalf("sample row dated %s", r.Date)
			}
		}

		seeded, err = storage.SeedIfEmpty(ctx, s, day)
		if err != nil || seeded {
			t.Fatalf("second SeedIfEmpty = %v, %v", seeded, err)
		}
		if n, _ := s.Count(ctx); n != 3 {
			t.Fatalf("Count after second seed = %d", n)
		}
	})
}
