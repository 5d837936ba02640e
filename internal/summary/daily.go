package summary

import (
	"sort"

	"bakery/internal/core"
)

// DailyStat is the income, expense and profit of a single date.
type DailyStat struct {
	Date    core.Date  `json:"date"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Profit  core.Money `json:"profit"`
}

// DailyRollup groups transactions by date, most recent date first.
func DailyRollup(txns []core.Transaction) []DailyStat {
	byDay := map[string]*DailyStat{}
	for _, t := range txns {
		key := t.Date.String()
		day, ok := byDay[key]
		if !ok {
			day = &DailyStat{Date: t.Date}
			byDay[key] = day
		}
		switch t.Type {
		case core.Income:
			day.Income = day.Income.Add(t.Amount)
			day.Profit = day.Profit.Add(t.Amount)
		case core.Expense:
			day.Expense = day.Expense.Add(t.Amount)
			day.Profit = day.Profit.Sub(t.Amount)
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
