// Package api - API types for distance conversion
// These types define the contract for the JSON endpoints.
// The API is stateless and deterministic.
package api

import (
	"encoding/json"

	"distconv/core/units"
)

// ConvertRequest is the input to POST /convert
type ConvertRequest struct {
	// Value is a JSON number or a numeric string
	Value json.RawMessage `json:"value"`

	// From is the unit of Value
	From string `json:"from"`

	// To is the target unit
	To string `json:"to"`

	// Exact adds a decimal result to the response
	Exact bool `json:"exact,omitempty"`
}

// ConvertResponse is the output of POST /convert
type ConvertResponse struct {
	Input    DistanceView      `json:"input"`
	Output   DistanceView      `json:"output"`
	Exact    string            `json:"exact,omitempty"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// DistanceView is a distance with its display forms
type DistanceView struct {
	Value     float64                 `json:"value"`
	Unit      units.DistanceUnit      `json:"unit"`
	Label     string                  `json:"label"`
	System    units.MeasurementSystem `json:"system"`
	Formatted string                  `json:"formatted"`
}

// ResponseMetadata contains request identity and timing
type ResponseMetadata struct {
	RequestID     string `json:"request_id"`
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// SystemView describes one measurement system
type SystemView struct {
	System units.MeasurementSystem `json:"system"`
	Label  string                  `json:"label"`
	Units  []UnitView              `json:"units"`
}

// UnitView describes one unit
type UnitView struct {
	Unit        units.DistanceUnit      `json:"unit"`
	Label       string                  `json:"label"`
	Symbol      string                  `json:"symbol"`
	System      units.MeasurementSystem `json:"system"`
	Millimeters string                  `json:"millimeters"`
}

// BatchResponse is the output of POST /batch
type BatchResponse struct {
	Results  []BatchEntry      `json:"results"`
	Errors   []string          `json:"errors,omitempty"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// BatchEntry is one converted block of a batch file
type BatchEntry struct {
	Name   string       `json:"name"`
	Line   int          `json:"line"`
	Input  DistanceView `json:"input"`
	Output DistanceView `json:"output"`
	Exact  string       `json:"exact,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	RequestID string    `json:"request_id,omitempty"`
	Error     ErrorBody `json:"error"`
}

// ErrorBody carries a stable code and a human-readable message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
