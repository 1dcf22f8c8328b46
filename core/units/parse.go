package units

import (
	"strings"

	apperrors "distconv/internal/errors"
)

// aliases maps every accepted spelling to its unit
var aliases = map[string]DistanceUnit{}

func init() {
	for _, u := range All() {
		name := u.String()
		aliases[name] = u
		aliases[u.Symbol()] = u
		// singular forms: "inch", "foot", "yard", "mile", "meter", ...
		switch u {
		case Inches:
			aliases["inch"] = u
		case Feet:
			aliases["foot"] = u
		default:
			aliases[strings.TrimSuffix(name, "s")] = u
		}
	}
	aliases["metres"] = Meters
	aliases["metre"] = Meters
	aliases["millimetres"] = Millimeters
	aliases["centimetres"] = Centimeters
	aliases["kilometres"] = Kilometers
}

// ParseUnit resolves a unit name, symbol or singular form, ignoring case
func ParseUnit(s string) (DistanceUnit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := aliases[key]; ok {
		return u, nil
	}
	return 0, apperrors.Newf(apperrors.TypeInput, "unknown distance unit: %q", s).
		WithContext("accepted", unitNames[:])
}

// ParseSystem resolves "imperial" or "metric", ignoring case
func ParseSystem(s string) (MeasurementSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "imperial", "us":
		return Imperial, nil
	case "metric", "si":
		return Metric, nil
	}
	return 0, apperrors.Newf(apperrors.TypeInput, "unknown measurement system: %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (u DistanceUnit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, apperrors.Newf(apperrors.TypeInput, "invalid distance unit: %d", int(u))
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *DistanceUnit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (s MeasurementSystem) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, apperrors.Newf(apperrors.TypeInput, "invalid measurement system: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *MeasurementSystem) UnmarshalText(text []byte) error {
	parsed, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
