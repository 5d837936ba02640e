package summary

import (
	"bakery/internal/core"
)

// CategoryTotals maps category name to summed amount, separately per type.
type CategoryTotals struct {
	Income  map[string]core.Money `json:"income"`
	Expense map[string]core.Money `json:"expense"`
}

// Stats are the totals of one set of transactions.
type Stats struct {
	Income         core.Money     `json:"income"`
	Expense        core.Money     `json:"expense"`
	Profit         core.Money     `json:"profit"`
	CategoryTotals CategoryTotals `json:"category_totals"`
}

// CategoryAmount is a category with its summed amount.
type CategoryAmount struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

// CalculateStats sums income and expense in a single pass. Profit is always
// exactly Income minus Expense.
func CalculateStats(txns []core.Transaction) Stats {
	s := Stats{
		CategoryTotals: CategoryTotals{
			Income:  map[string]core.Money{},
			Expense: map[string]core.Money{},
		},
	}
	for _, t := range txns {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
			s.CategoryTotals.Income[t.Category] = s.CategoryTotals.Income[t.Category].Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
			s.CategoryTotals.Expense[t.Category] = s.CategoryTotals.Expense[t.Category].Add(t.Amount)
		}
	}
	s.Profit = s.Income.Sub(s.Expense)
	return s
}

// HighestExpenseCategory returns the expense category with the largest total.
// On a tie the category seen first in txns wins. ok is false when there are no
// expenses.
func HighestExpenseCategory(txns []core.Transaction) (best CategoryAmount, ok bool) {
	totals := map[string]core.Money{}
	var order []string
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	for _, name := range order {
		if !ok || totals[name].Cmp(best.Amount) > 0 {
			best = CategoryAmount{Name: name, Amount: totals[name]}
			ok = true
		}
	}
	return best, ok
}
