// Package input turns user-entered text into distance values.
//
// The conversion engine accepts any float64. Deciding what to do with text
// that is not a finite number happens here, under an explicit Policy.
package input

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
)

// Policy decides what happens to text that is not a finite number
type Policy string

const (
	// PolicyReject returns an input error
	PolicyReject Policy = "reject"

	// PolicyZero substitutes 0 and logs a warning
	PolicyZero Policy = "zero"
)

// ParsePolicy resolves a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReject, PolicyZero:
		return p, nil
	case "":
		return PolicyReject, nil
	}
	return "", apperrors.Newf(apperrors.TypeConfig, "unknown input policy %q (want reject or zero)", s)
}

// ParseValue parses a distance value.
// Empty, malformed, NaN and infinite text is handled according to policy.
func ParseValue(text string, policy Policy) (float64, error) {
	trimmed := strings.TrimSpace(text)
	v, reason := parseFinite(trimmed)
	if reason == "" {
		return v, nil
	}

	if policy == PolicyZero {
		logging.Warn("invalid distance value, using 0",
			zap.String("text", text),
			zap.String("reason", reason))
		return 0, nil
	}
	return 0, apperrors.Newf(apperrors.TypeInput, "invalid distance value %q: %s", text, reason)
}

func parseFinite(s string) (float64, string) {
	if s == "" {
		return 0, "empty"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, "out of range"
		}
		return 0, "not a number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "not finite"
	}
	return v, ""
}
