// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals so that sums computed in different orders
// (per day, per category, per month) always agree.
package core

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative decimal quantity in the bakery's single currency.
type Money struct {
	d decimal.Decimal
}

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// maxAmount is the exclusive upper bound on an amount. Anything below it with
// AmountScale places fits NUMERIC(14,2) and survives a SQLite REAL unchanged.
var maxAmount = decimal.New(1, 12)

// MaxAmount returns the exclusive upper bound on an amount.
func MaxAmount() Money { return Money{d: maxAmount} }

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromFloat converts a float, as produced by JSON clients, to Money.
func MoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

// MoneyFromInt returns a whole amount.
func MoneyFromInt(i int64) Money {
	return Money{d: decimal.NewFromInt(i)}
}

// ParseMoney parses a decimal string.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Zero is allowed; anything Validate rejects is an error.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34, nil
//	ParseMoney("12,34") -> 12.34, nil
//	ParseMoney("-1")    -> error
//	ParseMoney("1.234") -> error
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	m := Money{d: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Validate checks that the amount is storable as is: not negative, at most
// AmountScale decimal places and below MaxAmount.
func (m Money) Validate() error {
	if m.d.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	if !m.d.Equal(m.d.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}
	if m.d.Cmp(maxAmount) >= 0 {
		return fmt.Errorf("%w: must be less than %s", ErrInvalidAmount, maxAmount.String())
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money { return Money{d: m.d.Neg()} }

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.d }

// Float64 is for display and ratios only; never sum floats.
func (m Money) Float64() float64 {
	return m.d.InexactFloat64()
}

// String formats with two decimals, e.g. "85.50".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON writes a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
	}
	m.d = d
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.d.String(), nil
}

// Scan reads REAL (sqlite) and NUMERIC (postgres) columns.
func (m *Money) Scan(src any) error {
	if f, ok := src.(float64); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("%w: stored amount %v is not finite", ErrInvalidAmount, f)
		}
		m.d = decimal.NewFromFloat(f)
		return nil
	}
	return m.d.Scan(src)
}
