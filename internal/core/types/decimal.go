// Package types provides common type aliases and numeric utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity represents a quantity of goods in the currently selected unit.
// May be fractional (weighed goods, partial packs), hence decimal as well.
type Quantity = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// One returns decimal 1 (the base-unit conversion factor).
func One() decimal.Decimal {
	return decimal.NewFromInt(1)
}

// Hundred returns decimal 100 for percentage math.
func Hundred() decimal.Decimal {
	return decimal.NewFromInt(100)
}

// Round2 rounds to 2 decimal places, half away from zero.
//
// Every intermediate monetary figure in the line calculator is rounded with
// Round2 as soon as it is produced, not only at the end. Downstream figures
// (net, VAT, totals) are defined over the already-rounded inputs, so changing
// this to a single final rounding would change document totals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PercentOf returns Round2(base * pct / 100).
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(pct).Div(Hundred()))
}

// RateOf returns the percentage that part makes of whole, rounded to 2
// decimals. Returns zero when whole is not positive.
func RateOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Round2(part.Div(whole).Mul(Hundred()))
}
