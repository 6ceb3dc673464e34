package money

import (
	"fmt"
	"math"
)

// Money represents a monetary value stored in paise (minor units).
type Money = int64

// FromRupees converts a decimal rupee amount into paise, rounding half away
// from zero. This is the single place where 2-decimal rounding happens; all
// downstream arithmetic is exact integer math.
func FromRupees(v float64) Money {
	return Money(math.Round(v * 100))
}

// Rupees converts a paise amount back into decimal rupees for presentation.
func Rupees(m Money) float64 {
	return float64(m) / 100
}

// PercentBps applies a basis-point percentage to an amount using integer
// division, so the result is already rounded down to a whole paisa.
func PercentBps(amount Money, bps int32) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount * Money(bps)) / 10000
}

// ClampNonNegative floors a value at zero.
func ClampNonNegative(m Money) Money {
	if m < 0 {
		return 0
	}
	return m
}

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// FormatINR renders an amount as a rupee string with two decimals.
func FormatINR(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, m/100, m%100)
}
