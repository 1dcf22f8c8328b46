package batch

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// SafeValue is an attribute value after evaluation. Unknown and null values
// are kept explicit rather than collapsed into zero values.
type SafeValue struct {
	// Value holds a float64 or string when known and not null
	Value interface{}

	// IsKnown is false when the expression could not be fully evaluated
	IsKnown bool

	// IsNull is true for an explicit null
	IsNull bool

	// CtyType is the friendly name of the original type
	CtyType string
}

// ValueError describes an attribute whose value is unusable
type ValueError struct {
	Attribute string
	Reason    string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("attribute %q: %s", e.Attribute, e.Reason)
}

// toSafe converts val to the wanted primitive type (cty.Number or cty.String)
func toSafe(attr string, val cty.Value, want cty.Type) (SafeValue, error) {
	result := SafeValue{CtyType: val.Type().FriendlyName()}

	if !val.IsKnown() {
		return result, &ValueError{Attribute: attr, Reason: "value is not known"}
	}
	result.IsKnown = true

	if val.IsNull() {
		result.IsNull = true
		return result, &ValueError{Attribute: attr, Reason: "value is null"}
	}

	converted, err := convert.Convert(val, want)
	if err != nil {
		return result, &ValueError{
			Attribute: attr,
			Reason:    fmt.Sprintf("%s required, got %s", want.FriendlyName(), val.Type().FriendlyName()),
		}
	}

	switch want {
	case cty.Number:
		f, _ := converted.AsBigFloat().Float64()
		if math.IsInf(f, 0) {
			return result, &ValueError{Attribute: attr, Reason: "number out of range"}
		}
		result.Value = f
	case cty.String:
		result.Value = converted.AsString()
	}
	return result, nil
}

// AsFloat returns the value as a float64, or 0 if not a number
func (v SafeValue) AsFloat() float64 {
	if f, ok := v.Value.(float64); ok {
		return f
	}
	return 0
}

// AsString returns the value as a string, or empty if not a string
func (v SafeValue) AsString() string {
	if s, ok := v.Value.(string); ok {
		return s
	}
	return ""
}
