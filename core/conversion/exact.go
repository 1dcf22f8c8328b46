package conversion

import (
	"math"

	"github.com/shopspring/decimal"

	"distconv/core/units"
)

// DivisionPrecision is the number of fractional digits kept when dividing
// out of millimeters.
const DivisionPrecision int32 = 16

var exactFactors = [...]decimal.Decimal{
	units.Inches:      decimal.RequireFromString("25.4"),
	units.Feet:        decimal.RequireFromString("304.8"),
	units.Yards:       decimal.RequireFromString("914.4"),
	units.Miles:       decimal.RequireFromString("1609344"),
	units.Millimeters: decimal.NewFromInt(1),
	units.Centimeters: decimal.NewFromInt(10),
	units.Meters:      decimal.NewFromInt(1000),
	units.Kilometers:  decimal.NewFromInt(1000000),
}

// ExactScaleFactor returns the millimeters in one unit as a decimal.
// An invalid unit yields zero.
func ExactScaleFactor(unit units.DistanceUnit) decimal.Decimal {
	if !unit.Valid() {
		return decimal.Zero
	}
	return exactFactors[unit]
}

// ConvertExact performs Convert in decimal arithmetic. Multiplication is
// exact; the division keeps DivisionPrecision fractional digits.
func ConvertExact(value decimal.Decimal, from, to units.DistanceUnit) decimal.Decimal {
	if from == to {
		return value
	}
	mm := value.Mul(ExactScaleFactor(from))
	divisor := ExactScaleFactor(to)
	if divisor.IsZero() {
		return decimal.Zero
	}
	return mm.DivRound(divisor, DivisionPrecision)
}

// ConvertFloatExact converts a finite float through ConvertExact. ok is false
// for NaN and infinities, which decimal cannot represent.
func ConvertFloatExact(value float64, from, to units.DistanceUnit) (result decimal.Decimal, ok bool) {
	if !isFinite(value) {
		return decimal.Zero, false
	}
	return ConvertExact(decimal.NewFromFloat(value), from, to), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
