/*
money.go - Exact fixed-point money arithmetic

PURPOSE:
  Money is the value type for every amount in the engine. It is an integer
  count of minor units (cents), so addition, subtraction and multiplication
  are exact. Binary floating point never crosses a component boundary.

DESIGN PRINCIPLES:
  1. Precision: int64 minor units; decimal.Decimal only at the parse/format
     boundary where user-entered strings like "57.48" come in.
  2. Distribution, not division: splitting an amount into N parts never
     loses or invents a cent (see Split).

SEE ALSO:
  - schedule.go: Uses Split to build installment schedules
  - aggregate.go: Sums Money across entries/exits/installments
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents). The zero value is zero money.
type Money struct {
	Cents int64
}

// NewMoney builds a Money from a count of minor units.
func NewMoney(cents int64) Money {
	return Money{Cents: cents}
}

// MustParseMoney is ParseMoney for literals in tests and fixtures.
// It returns zero money on a parse failure instead of panicking.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return Money{}
	}
	return m
}

// ParseMoney converts a decimal string ("57.48") into minor units.
// Digits beyond the second decimal place are rounded half-up.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount as a decimal in major units (e.g. 57.48).
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money    { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money    { return Money{Cents: m.Cents - o.Cents} }
func (m Money) MulInt(n int64) Money { return Money{Cents: m.Cents * n} }
func (m Money) Neg() Money           { return Money{Cents: -m.Cents} }

func (m Money) IsZero() bool             { return m.Cents == 0 }
func (m Money) IsPositive() bool         { return m.Cents > 0 }
func (m Money) IsNegative() bool         { return m.Cents < 0 }
func (m Money) Equal(o Money) bool       { return m.Cents == o.Cents }
func (m Money) GreaterThan(o Money) bool { return m.Cents > o.Cents }
func (m Money) LessThan(o Money) bool    { return m.Cents < o.Cents }

// Split divides the amount into n parts that sum back to it exactly.
// Every part gets floor(m/n); the remainder (0 <= r < n minor units) is
// distributed one cent each to the LAST r parts, so early parts carry the
// base amount and the final parts absorb the leftover cents.
//
// Split panics if n < 1; callers validate the count first (see schedule.go).
func (m Money) Split(n int) []Money {
	if n < 1 {
		panic("money: split count must be >= 1")
	}
	base := m.Cents / int64(n)
	remainder := m.Cents - base*int64(n)

	parts := make([]Money, n)
	for i := range parts {
		parts[i] = Money{Cents: base}
		if i >= n-int(remainder) {
			parts[i].Cents++
		}
	}
	return parts
}

// Sum adds a series of amounts. Sum of nothing is zero money.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
