package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bakery/internal/core"
)

// SampleTransactions are the rows written into an empty store on first start.
func SampleTransactions(day core.Date) []core.TransactionFields {
	return []core.TransactionFields{
		{Date: day, Description: "Morning Sourdough Sales", Amount: core.MoneyFromInt(450), Type: core.Income, Category: "Counter Sales"},
		{Date: day, Description: "Flour (50kg)", Amount: core.MoneyFromInt(120), Type: core.Expense, Category: "Ingredients"},
		{Date: day, Description: "Butter & Eggs", Amount: core.MoneyFromFloat(85.5), Type: core.Expense, Category: "Ingredients"},
	}
}

// SeedIfEmpty inserts the sample rows dated day when the store has no
// transactions. It reports whether anything was written.
func SeedIfEmpty(ctx context.Context, store TransactionStore, day core.Date) (bool, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check transactions count: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for _, f := range SampleTransactions(day) {
		if _, err := store.Create(ctx, f); err != nil {
			return false, fmt.Errorf("seed transaction %q: %w", f.Description, err)
		}
	}
	slog.InfoContext(ctx, "Seeded empty store with sample transactions", "date", day.String())
	return true, nil
}
