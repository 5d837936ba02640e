// Package summary implements the aggregations shown on the dashboard: month and
// type filters, totals per type and category, the daily roll-up and growth
// against yesterday. Everything here is pure; callers supply the transactions
// and the current time.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bakery/internal/core"
)

// Month identifies a calendar month, written as YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM token.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Contains(d core.Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// TypeFilter restricts a listing to one transaction type, or none.
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// ParseTypeFilter maps "", "all", "income" and "expense" to a filter.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch f := TypeFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterIncome, FilterExpense:
		return f, nil
	default:
		return "", fmt.Errorf("invalid type filter %q: must be one of all, income, expense", s)
	}
}

func (f TypeFilter) matches(t core.TxType) bool {
	switch f {
	case FilterIncome:
		return t == core.Income
	case FilterExpense:
		return t == core.Expense
	default:
		return true
	}
}

// FilterMonth returns the transactions dated within m, most recent date first.
// Transactions sharing a date keep their input order.
func FilterMonth(txns []core.Transaction, m Month) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if m.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// FilterType keeps the transactions accepted by f, preserving order.
func FilterType(txns []core.Transaction, f TypeFilter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if f.matches(t.Type) {
			out = append(out, t)
		}
	}
	return out
}

// FilterDate keeps the transactions dated exactly d.
func FilterDate(txns []core.Transaction, d core.Date) []core.Transaction {
	var out []core.Transaction
	for _, t := range txns {
		if t.Date.Equal(d) {
			out = append(out, t)
		}
	}
	return out
}
