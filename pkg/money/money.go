// Package money holds the cent arithmetic shared by the cart and analytics.
package money

import "github.com/shopspring/decimal"

// PercentOf returns percent% of amount, rounded half away from zero to whole cents.
func PercentOf(amount, percent int64) int64 {
	if amount == 0 || percent == 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// FloorZero clamps negative amounts to zero.
func FloorZero(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	return amount
}

// GrowthPercent returns the change from previous to current as a percentage
// rounded to two places. A zero previous period reports zero growth.
func GrowthPercent(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	growth := decimal.NewFromInt(current - previous).
		Div(decimal.NewFromInt(previous)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := growth.Float64()
	return f
}
