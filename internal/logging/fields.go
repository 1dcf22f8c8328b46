package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Unit tags a log entry with a distance unit under key
func Unit(key string, u fmt.Stringer) zap.Field {
	return zap.Stringer(key, u)
}

// Value tags a log entry with a raw distance value
func Value(v float64) zap.Field {
	return zap.Float64("value", v)
}

// Result tags a log entry with a converted value
func Result(v float64) zap.Field {
	return zap.Float64("result", v)
}
