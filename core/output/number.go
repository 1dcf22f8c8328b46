package output

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the most fractional digits shown for a value
const MaxFractionDigits int32 = 4

// FormatNumber renders v with between 0 and MaxFractionDigits fractional
// digits and at least one integer digit: 3 -> "3", 0.5 -> "0.5",
// 1.23456 -> "1.2346". Ties round to even: 0.00025 -> "0.0002".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return FormatDecimal(decimal.NewFromFloat(v), MaxFractionDigits)
}

// FormatDecimal renders d rounded to maxFraction digits with trailing zeros trimmed
func FormatDecimal(d decimal.Decimal, maxFraction int32) string {
	rounded := d.RoundBank(maxFraction)
	if rounded.IsZero() {
		// no "-0"
		return "0"
	}
	return rounded.String()
}
