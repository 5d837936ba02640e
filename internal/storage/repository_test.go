package storage_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"bakery/internal/core"
	"bakery/internal/storage"
	"bakery/internal/storage/storagetest"
)

func newSQLite(t *testing.T) storage.TransactionStore {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "bakery.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, newSQLite)
}

func TestSQLiteRepository_ReopenKeepsRowsAndIDs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bakery.db")

	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f := core.TransactionFields{
		Date:        core.NewDate(2024, 5, 1),
		Description: "Croissant tray",
		Amount:      core.MoneyFromFloat(12.75),
		Type:        core.Income,
		Category:    "Counter Sales",
	}
	first, err := repo.Create(ctx, f)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	repo.Close()

	// Migrations run again on reopen and must be a no-op.
	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	second, err := repo.Create(ctx, f)
	if err != nil {
		t.Fatalf("create after reopen: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("id %d reused or went backwards after %d", second.ID, first.ID)
	}
	if !second.Amount.Equal(core.MoneyFromFloat(12.75)) {
		t.Fatalf("amount = %s", second.Amount)
	}
}

func TestSQLiteRepository_OutOfRangeAmountIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := newSQLite(t)

	var huge core.Money
	if err := json.Unmarshal([]byte(`1e400`), &huge); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	f := core.TransactionFields{
		Date:        core.NewDate(2024, 5, 1),
		Description: "Oven",
		Amount:      huge,
		Type:        core.Expense,
		Category:    "Equipment",
	}
	if _, err := repo.Create(ctx, f); err == nil {
		t.Fatal("expected the schema to reject an amount that overflows REAL")
	}

	f.Amount = core.MoneyFromInt(900)
	ok, err := repo.Create(ctx, f)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.Amount = huge
	if _, err := repo.Update(ctx, ok.ID, f); err == nil {
		t.Fatal("expected update with an overflowing amount to fail")
	}

	rows, err := repo.ListAll(ctx)
	if err != nil || len(rows) != 1 || !rows[0].Amount.Equal(core.MoneyFromInt(900)) {
		t.Fatalf("ListAll = %+v, %v", rows, err)
	}
}
