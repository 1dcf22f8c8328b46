package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distconv/core/input"
	"distconv/core/units"
	"distconv/internal/ratelimit"
)

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestConvert(t *testing.T) {
	s := NewServer(Options{Version: "test"})

	rec := do(t, s, http.MethodPost, "/convert", `{"value": 1, "from": "inches", "to": "mm"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[ConvertResponse](t, rec)
	assert.Equal(t, 1.0, resp.Input.Value)
	assert.Equal(t, units.Inches, resp.Input.Unit)
	assert.Equal(t, units.Imperial, resp.Input.System)
	assert.Equal(t, 25.4, resp.Output.Value)
	assert.Equal(t, units.Millimeters, resp.Output.Unit)
	assert.Equal(t, "Millimeters", resp.Output.Label)
	assert.Equal(t, units.Metric, resp.Output.System)
	assert.Equal(t, "25.4", resp.Output.Formatted)
	assert.Empty(t, resp.Exact)

	require.NotNil(t, resp.Metadata)
	assert.Len(t, resp.Metadata.InputHash, 64)
	assert.Equal(t, "test", resp.Metadata.EngineVersion)
}

func TestConvertStringValueAndExact(t *testing.T) {
	s := NewServer(Options{})

	rec := do(t, s, http.MethodPost, "/convert", `{"value": "1", "from": "mile", "to": "km", "exact": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ConvertResponse](t, rec)
	assert.InDelta(t, 1.609344, resp.Output.Value, 1e-12)
	assert.Equal(t, "1.609344", resp.Exact)
}

// TestConvertSameBodySameHash proves identical requests are identified identically
func TestConvertSameBodySameHash(t *testing.T) {
	s := NewServer(Options{})
	body := `{"value": 100, "from": "cm", "to": "m"}`

	a := decode[ConvertResponse](t, do(t, s, http.MethodPost, "/convert", body))
	b := decode[ConvertResponse](t, do(t, s, http.MethodPost, "/convert", body))
	assert.Equal(t, a.Metadata.InputHash, b.Metadata.InputHash)
	assert.Equal(t, 1.0, a.Output.Value)
}

func TestConvertErrors(t *testing.T) {
	s := NewServer(Options{})

	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{"value": `, "INVALID_JSON"},
		{"unknown unit", `{"value": 1, "from": "furlong", "to": "m"}`, "INPUT_ERROR"},
		{"non-numeric value", `{"value": "abc", "from": "m", "to": "km"}`, "INPUT_ERROR"},
		{"missing value", `{"from": "m", "to": "km"}`, "INPUT_ERROR"},
		{"overflow", `{"value": 1e308, "from": "km", "to": "mm"}`, "INPUT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/convert", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error.Code)
		})
	}
}

func TestConvertZeroPolicy(t *testing.T) {
	s := NewServer(Options{Policy: input.PolicyZero})

	rec := do(t, s, http.MethodPost, "/convert", `{"value": "abc", "from": "m", "to": "km"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.0, decode[ConvertResponse](t, rec).Output.Value)
}

func TestUnits(t *testing.T) {
	s := NewServer(Options{})

	rec := do(t, s, http.MethodGet, "/units?system=metric", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		System units.MeasurementSystem `json:"system"`
		Label  string                  `json:"label"`
		Units  []UnitView              `json:"units"`
	}](t, rec)
	assert.Equal(t, units.Metric, body.System)
	assert.Equal(t, "Metric (World)", body.Label)
	require.Len(t, body.Units, 4)
	assert.Equal(t, units.Millimeters, body.Units[0].Unit)
	assert.Equal(t, units.Kilometers, body.Units[3].Unit)
	assert.Equal(t, "1000000", body.Units[3].Millimeters)

	all := decode[struct {
		Units []UnitView `json:"units"`
	}](t, do(t, s, http.MethodGet, "/units", ""))
	assert.Len(t, all.Units, 8)

	rec = do(t, s, http.MethodGet, "/units?system=nautical", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystems(t *testing.T) {
	s := NewServer(Options{})

	body := decode[struct {
		Systems []SystemView `json:"systems"`
	}](t, do(t, s, http.MethodGet, "/systems", ""))

	require.Len(t, body.Systems, 2)
	assert.Equal(t, "Imperial (US)", body.Systems[0].Label)
	assert.Equal(t, units.Inches, body.Systems[0].Units[0].Unit)
	assert.Equal(t, "Metric (World)", body.Systems[1].Label)
}

func TestBatch(t *testing.T) {
	s := NewServer(Options{})
	src := `
conversion "desk" {
  value = 60
  from  = "in"
  to    = "cm"
}

conversion "broken" {
  value = 1
  from  = "furlong"
  to    = "m"
}
`
	rec := do(t, s, http.MethodPost, "/batch?exact=true", src)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "desk", resp.Results[0].Name)
	assert.Equal(t, 2, resp.Results[0].Line)
	assert.Equal(t, "152.4", resp.Results[0].Output.Formatted)
	assert.Equal(t, "152.4", resp.Results[0].Exact)

	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], `conversion "broken"`)
}

func TestHealthAndVersion(t *testing.T) {
	s := NewServer(Options{Version: "1.2.3"})

	health := decode[map[string]string](t, do(t, s, http.MethodGet, "/health", ""))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "1.2.3", health["version"])

	version := decode[map[string]string](t, do(t, s, http.MethodGet, "/version", ""))
	assert.Equal(t, "1.2.3", version["version"])
}

// TestUnroutedRequests proves 404 and 405 answers use the JSON error body
func TestUnroutedRequests(t *testing.T) {
	s := NewServer(Options{})

	rec := do(t, s, http.MethodGet, "/convert", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodPost)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body.Error.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)
	assert.NotEmpty(t, body.RequestID)

	rec = do(t, s, http.MethodGet, "/nowhere", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body = decode[ErrorResponse](t, rec)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Contains(t, body.Error.Message, "/nowhere")
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)
}

// TestRateLimitAndStats proves throttled requests are rejected and counted
func TestRateLimitAndStats(t *testing.T) {
	stats := ratelimit.NewMemoryStats()
	s := NewServer(Options{
		Limiter: ratelimit.NewStore(0.001, 2),
		Stats:   stats,
	})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/systems", "").Code)

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)

	assert.Equal(t, ratelimit.Counters{Allowed: 2, Denied: 1}, stats.Total())
}

func TestStats(t *testing.T) {
	stats := ratelimit.NewMemoryStats()
	s := NewServer(Options{Limiter: ratelimit.NewStore(100, 100), Stats: stats})

	do(t, s, http.MethodGet, "/health", "")
	rec := do(t, s, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Total ratelimit.Counters `json:"total"`
	}](t, rec)
	assert.Equal(t, int64(2), body.Total.Allowed)

	disabled := do(t, NewServer(Options{}), http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusNotFound, disabled.Code)
	assert.Equal(t, "STATS_DISABLED", decode[ErrorResponse](t, disabled).Error.Code)
}

// TestRequestID proves every response carries an ID, reusing the caller's when given
func TestRequestID(t *testing.T) {
	s := NewServer(Options{})

	rec := do(t, s, http.MethodPost, "/convert", `{"value": 1, "from": "ft", "to": "in"}`)
	id := rec.Header().Get("X-Request-ID")
	assert.Len(t, id, 36)
	assert.Equal(t, id, decode[ConvertResponse](t, rec).Metadata.RequestID)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"value": 1, "from": "ft", "to": "parsec"}`))
	req.Header.Set("X-Request-ID", "trace-42")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "trace-42", decode[ErrorResponse](t, rec).RequestID)
}
