// Package money converts between the integer minor units stored in the
// database and the decimal amounts exchanged over the API.
package money

import "github.com/shopspring/decimal"

// ToCents converts a decimal amount (e.g. 12.35) to minor units, rounding
// half away from zero.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

// FromCents converts minor units back to a decimal amount.
func FromCents(cents int64) float64 {
	f, _ := decimal.New(cents, -2).Float64()
	return f
}

// Format renders minor units with two decimal places.
func Format(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
