// Package types provides common value types and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits stored for money (NUMERIC(12,2)).
const MoneyPlaces int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds m half away from zero to the stored precision.
func Round(m Money) Money {
	return m.Round(MoneyPlaces)
}

// LineAmount returns quantity * unitPrice.
func LineAmount(quantity int, unitPrice Money) Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Percent returns ratePercent% of base, rounded to the stored precision.
// Percent(200, 18) == 36.
func Percent(base Money, ratePercent decimal.Decimal) Money {
	return Round(base.Mul(ratePercent).Div(decimal.NewFromInt(100)))
}
