package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParsePolicy(" ZERO ")
	require.NoError(t, err)
	assert.Equal(t, PolicyZero, p)

	_, err = ParsePolicy("ignore")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeConfig))
}

func TestParseValueAcceptsFiniteNumbers(t *testing.T) {
	cases := map[string]float64{
		"12.5":    12.5,
		" 3 ":     3,
		"-4":      -4,
		"1e3":     1000,
		"0.0001":  0.0001,
		"+7":      7,
		".5":      0.5,
		"1234567": 1234567,
	}
	for text, want := range cases {
		for _, policy := range []Policy{PolicyReject, PolicyZero} {
			got, err := ParseValue(text, policy)
			require.NoError(t, err, "%q under %s", text, policy)
			assert.Equal(t, want, got, "%q under %s", text, policy)
		}
	}
}

// TestParseValueReject proves the reject policy turns every bad entry into an input error
func TestParseValueReject(t *testing.T) {
	for _, text := range []string{"", "   ", "abc", "1.2.3", "12ft", "NaN", "Inf", "-inf", "1e400"} {
		_, err := ParseValue(text, PolicyReject)
		require.Error(t, err, "%q", text)
		assert.True(t, apperrors.IsType(err, apperrors.TypeInput), "%q", text)
	}
}

// TestParseValueZero proves the zero policy substitutes 0 for every bad entry
func TestParseValueZero(t *testing.T) {
	for _, text := range []string{"", "abc", "NaN", "1e400"} {
		got, err := ParseValue(text, PolicyZero)
		require.NoError(t, err, "%q", text)
		assert.Equal(t, 0.0, got, "%q", text)
	}
}

func TestParseValueErrorReason(t *testing.T) {
	_, err := ParseValue("1e400", PolicyReject)
	assert.Contains(t, err.Error(), "out of range")

	_, err = ParseValue("", PolicyReject)
	assert.Contains(t, err.Error(), "empty")
}

// TestParseValueZeroLogsWarning proves a substituted value never passes silently
func TestParseValueZeroLogsWarning(t *testing.T) {
	prev := logging.Logger
	defer logging.Replace(prev)

	core, logs := observer.New(zapcore.WarnLevel)
	logging.Replace(zap.New(core))

	_, err := ParseValue("abc", PolicyZero)
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "abc", entry.ContextMap()["text"])
	assert.Equal(t, "not a number", entry.ContextMap()["reason"])
}
