package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distconv/core/conversion"
	"distconv/core/units"
	apperrors "distconv/internal/errors"
)

func render(t *testing.T, f Formatter, results ...*Result) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf, results))
	return buf.String()
}

func TestNewResultConverts(t *testing.T) {
	r := NewResult("", conversion.NewDistance(100, units.Centimeters), units.Meters)
	assert.Equal(t, units.Meters, r.Output.Unit)
	assert.InDelta(t, 1, r.Output.Value, 1e-12)
	assert.Equal(t, "100 centimeters converts into 1 meters", r.Sentence())
}

func TestWithExact(t *testing.T) {
	r := NewResult("", conversion.NewDistance(1, units.Miles), units.Kilometers).WithExact()
	assert.Equal(t, "1.609344", r.Exact)

	nan := NewResult("", conversion.NewDistance(math.NaN(), units.Miles), units.Kilometers).WithExact()
	assert.Empty(t, nan.Exact)
}

// TestCLIFormatterSingle proves a lone conversion uses the three-line layout
func TestCLIFormatterSingle(t *testing.T) {
	r := NewResult("", conversion.NewDistance(1, units.Inches), units.Millimeters)
	assert.Equal(t, "1 inches\nconverts into\n25.4 millimeters\n", render(t, &CLIFormatter{}, r))
}

func TestCLIFormatterMany(t *testing.T) {
	results := []*Result{
		NewResult("desk", conversion.NewDistance(60, units.Inches), units.Centimeters),
		NewResult("", conversion.NewDistance(3, units.Feet), units.Yards),
		{Name: "broken", Err: errors.New("bad unit")},
	}

	want := "desk: 60 inches converts into 152.4 centimeters\n" +
		"#2: 3 feet converts into 1 yards\n" +
		"broken: error: bad unit\n"
	assert.Equal(t, want, render(t, &CLIFormatter{}, results...))
}

func TestJSONFormatter(t *testing.T) {
	results := []*Result{
		NewResult("marathon", conversion.NewDistance(1, units.Miles), units.Kilometers).WithExact(),
		NewResult("nan", conversion.NewDistance(math.NaN(), units.Feet), units.Meters),
		{Name: "broken", Err: errors.New("bad unit")},
	}
	out := render(t, &JSONFormatter{Indent: "  "}, results...)

	var decoded []struct {
		Name  string `json:"name"`
		Input struct {
			Value     *float64 `json:"value"`
			Unit      string   `json:"unit"`
			Formatted string   `json:"formatted"`
		} `json:"input"`
		Output struct {
			Value     *float64 `json:"value"`
			Unit      string   `json:"unit"`
			Formatted string   `json:"formatted"`
		} `json:"output"`
		Exact string `json:"exact"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 3)

	assert.Equal(t, "marathon", decoded[0].Name)
	assert.Equal(t, "miles", decoded[0].Input.Unit)
	assert.Equal(t, "kilometers", decoded[0].Output.Unit)
	require.NotNil(t, decoded[0].Output.Value)
	assert.InDelta(t, 1.609344, *decoded[0].Output.Value, 1e-12)
	assert.Equal(t, "1.6093", decoded[0].Output.Formatted)
	assert.Equal(t, "1.609344", decoded[0].Exact)

	assert.Nil(t, decoded[1].Input.Value)
	assert.Equal(t, "NaN", decoded[1].Output.Formatted)

	assert.Equal(t, "bad unit", decoded[2].Error)
}

func TestMarkdownFormatter(t *testing.T) {
	results := []*Result{
		NewResult("desk", conversion.NewDistance(60, units.Inches), units.Centimeters),
		{Name: "broken", Err: errors.New("want a|b")},
	}
	out := render(t, &MarkdownFormatter{}, results...)

	assert.Contains(t, out, "| Name | Input | Output |\n")
	assert.Contains(t, out, "| desk | 60 inches | 152.4 centimeters |\n")
	assert.Contains(t, out, `| broken | error | want a\|b |`)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"cli", "json", "markdown"}, reg.Names())

	f, err := reg.Get("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = reg.Get("xml")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeInput))
	assert.Contains(t, err.Error(), "cli, json, markdown")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&CLIFormatter{}))
	assert.Error(t, reg.Register(&CLIFormatter{}))
}
