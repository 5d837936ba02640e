package summary

import (
	"time"

	"bakery/internal/core"
)

// View is the client's selection: which month to look at and which types to list.
// It is passed explicitly to every computation instead of living in globals.
type View struct {
	Month Month
	Type  TypeFilter
}

// DefaultView shows every type for the month containing now.
func DefaultView(now time.Time) View {
	return View{Month: MonthOf(now), Type: FilterAll}
}

// Dashboard is everything derived from the full transaction list for one View.
type Dashboard struct {
	Month          string             `json:"month"`
	Type           TypeFilter         `json:"type"`
	Transactions   []core.Transaction `json:"transactions"`
	Stats          Stats              `json:"stats"`
	Daily          []DailyStat        `json:"daily"`
	HighestExpense *CategoryAmount    `json:"highest_expense_category"`
	DayOverDay     DayComparison      `json:"day_over_day"`
}

// BuildDashboard derives the dashboard from the full list.
//
// Stats, the daily roll-up and the highest expense category cover the whole
// month regardless of v.Type; the type filter only narrows the listed
// transactions. The day-over-day comparison always uses the full list.
func BuildDashboard(all []core.Transaction, v View, now time.Time) Dashboard {
	if v.Type == "" {
		v.Type = FilterAll
	}
	month := FilterMonth(all, v.Month)

	d := Dashboard{
		Month:        v.Month.String(),
		Type:         v.Type,
		Transactions: FilterType(month, v.Type),
		Stats:        CalculateStats(month),
		Daily:        DailyRollup(month),
		DayOverDay:   DayOverDay(all, now),
	}
	if best, ok := HighestExpenseCategory(month); ok {
		d.HighestExpense = &best
	}
	return d
}
