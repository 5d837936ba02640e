package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"bakery/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CalculateGrowth returns the percentage change from previous to current.
//
// When previous is zero there is no ratio; the result is 0 if current is also
// zero and 100 otherwise, whatever the size or sign of current.
func CalculateGrowth(current, previous core.Money) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	change := current.Decimal().Sub(previous.Decimal())
	return change.Div(previous.Decimal()).Mul(hundred).InexactFloat64()
}

// Growth holds day-over-day percentages.
type Growth struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

// DayComparison is today's and yesterday's totals with the growth between them.
type DayComparison struct {
	Today          core.Date `json:"today"`
	Yesterday      core.Date `json:"yesterday"`
	TodayStats     Stats     `json:"today_stats"`
	YesterdayStats Stats     `json:"yesterday_stats"`
	Growth         Growth    `json:"growth"`
}

// DayOverDay compares the totals dated today with those dated yesterday, where
// today is the calendar date of now in now's location.
func DayOverDay(txns []core.Transaction, now time.Time) DayComparison {
	today := core.DateOf(now)
	yesterday := today.AddDays(-1)

	ts := CalculateStats(FilterDate(txns, today))
	ys := CalculateStats(FilterDate(txns, yesterday))

	return DayComparison{
		Today:          today,
		Yesterday:      yesterday,
		TodayStats:     ts,
		YesterdayStats: ys,
		Growth: Growth{
			Income:  CalculateGrowth(ts.Income, ys.Income),
			Expense: CalculateGrowth(ts.Expense, ys.Expense),
			Profit:  CalculateGrowth(ts.Profit, ys.Profit),
		},
	}
}
