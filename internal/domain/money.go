package domain

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
// All monetary fields of a PricingResult use this except the range bounds.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundTo5 rounds a monetary amount to the nearest 5 currency units.
// Used for the quote's price range bounds.
func RoundTo5(v float64) float64 {
	five := decimal.NewFromInt(5)
	f, _ := decimal.NewFromFloat(v).Div(five).Round(0).Mul(five).Float64()
	return f
}
