// Package conversion converts distances between units through millimeters.
//
// Every unit has one fixed scale factor, the number of millimeters in one of
// that unit. A conversion multiplies into millimeters and divides back out,
// so n units need n factors instead of n² pairwise ones.
package conversion

import (
	"math"

	"distconv/core/units"
)

// Millimeters per unit. Imperial factors are exact: the inch is defined as 25.4 mm.
const (
	mmPerInch       = 25.4
	mmPerFoot       = 12 * mmPerInch
	mmPerYard       = 36 * mmPerInch
	mmPerMile       = 63360 * mmPerInch
	mmPerMillimeter = 1
	mmPerCentimeter = 10
	mmPerMeter      = 1000
	mmPerKilometer  = 1000000
)

var scaleFactors = [...]float64{
	units.Inches:      mmPerInch,
	units.Feet:        mmPerFoot,
	units.Yards:       mmPerYard,
	units.Miles:       mmPerMile,
	units.Millimeters: mmPerMillimeter,
	units.Centimeters: mmPerCentimeter,
	units.Meters:      mmPerMeter,
	units.Kilometers:  mmPerKilometer,
}

// ScaleFactor returns the number of millimeters in one unit.
// It returns NaN for a value outside the unit enumeration.
func ScaleFactor(unit units.DistanceUnit) float64 {
	if !unit.Valid() {
		return math.NaN()
	}
	return scaleFactors[unit]
}

// ToMillimeters converts value, expressed in unit, to millimeters
func ToMillimeters(unit units.DistanceUnit, value float64) float64 {
	return value * ScaleFactor(unit)
}

// FromMillimeters converts a length in millimeters to unit
func FromMillimeters(unit units.DistanceUnit, millimeters float64) float64 {
	return millimeters / ScaleFactor(unit)
}

// Convert converts value from one unit to another. Converting a unit to
// itself returns value untouched. NaN and infinities propagate.
func Convert(value float64, from, to units.DistanceUnit) float64 {
	if from == to {
		return value
	}
	return FromMillimeters(to, ToMillimeters(from, value))
}

// Distance is a length in a specific unit
type Distance struct {
	Value float64            `json:"value"`
	Unit  units.DistanceUnit `json:"unit"`
}

// NewDistance creates a distance
func NewDistance(value float64, unit units.DistanceUnit) Distance {
	return Distance{Value: value, Unit: unit}
}

// To returns d expressed in another unit
func (d Distance) To(unit units.DistanceUnit) Distance {
	return Distance{Value: Convert(d.Value, d.Unit, unit), Unit: unit}
}

// Millimeters returns d in millimeters
func (d Distance) Millimeters() float64 {
	return ToMillimeters(d.Unit, d.Value)
}
