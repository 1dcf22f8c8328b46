// Package units defines the supported length units and the measurement
// systems that group them.
package units

// MeasurementSystem identifies a family of units
type MeasurementSystem int

const (
	// Imperial is the US customary system
	Imperial MeasurementSystem = iota

	// Metric is the SI system
	Metric
)

// DistanceUnit is one unit of length
type DistanceUnit int

// Imperial units come first, then metric, each in display order.
const (
	Inches DistanceUnit = iota
	Feet
	Yards
	Miles
	Millimeters
	Centimeters
	Meters
	Kilometers
)

var (
	imperialUnits = [...]DistanceUnit{Inches, Feet, Yards, Miles}
	metricUnits   = [...]DistanceUnit{Millimeters, Centimeters, Meters, Kilometers}
)

var unitNames = [...]string{
	Inches:      "inches",
	Feet:        "feet",
	Yards:       "yards",
	Miles:       "miles",
	Millimeters: "millimeters",
	Centimeters: "centimeters",
	Meters:      "meters",
	Kilometers:  "kilometers",
}

var unitSymbols = [...]string{
	Inches:      "in",
	Feet:        "ft",
	Yards:       "yd",
	Miles:       "mi",
	Millimeters: "mm",
	Centimeters: "cm",
	Meters:      "m",
	Kilometers:  "km",
}

// Systems returns every measurement system in display order
func Systems() []MeasurementSystem {
	return []MeasurementSystem{Imperial, Metric}
}

// For returns the units of a system in display order.
// The returned slice is a copy and may be modified by the caller.
func For(system MeasurementSystem) []DistanceUnit {
	switch system {
	case Imperial:
		out := imperialUnits
		return out[:]
	case Metric:
		out := metricUnits
		return out[:]
	}
	return nil
}

// All returns every unit, imperial first
func All() []DistanceUnit {
	all := make([]DistanceUnit, 0, len(imperialUnits)+len(metricUnits))
	all = append(all, imperialUnits[:]...)
	return append(all, metricUnits[:]...)
}

// DefaultUnit is the unit selected when a system is first chosen
func DefaultUnit(system MeasurementSystem) DistanceUnit {
	if system == Metric {
		return Millimeters
	}
	return Inches
}

// Valid reports whether s is a known system
func (s MeasurementSystem) Valid() bool {
	return s == Imperial || s == Metric
}

// String returns the text form used in flags, JSON and batch files
func (s MeasurementSystem) String() string {
	switch s {
	case Imperial:
		return "imperial"
	case Metric:
		return "metric"
	}
	return "unknown"
}

// Label returns the human-readable system name
func (s MeasurementSystem) Label() string {
	switch s {
	case Imperial:
		return "Imperial (US)"
	case Metric:
		return "Metric (World)"
	}
	return "Unknown"
}

// Valid reports whether u is a known unit
func (u DistanceUnit) Valid() bool {
	return u >= Inches && u <= Kilometers
}

// System returns the measurement system u belongs to
func (u DistanceUnit) System() MeasurementSystem {
	if u >= Millimeters {
		return Metric
	}
	return Imperial
}

// String returns the lower-case plural name
func (u DistanceUnit) String() string {
	if !u.Valid() {
		return "unknown"
	}
	return unitNames[u]
}

// Symbol returns the abbreviation, e.g. "km"
func (u DistanceUnit) Symbol() string {
	if !u.Valid() {
		return "?"
	}
	return unitSymbols[u]
}

// Label returns the capitalized name shown to users
func (u DistanceUnit) Label() string {
	name := u.String()
	return string(name[0]-'a'+'A') + name[1:]
}
