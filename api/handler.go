// Package api - request execution
// The handler only parses, delegates to core packages and shapes views.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"distconv/adapters/batch"
	"distconv/core/conversion"
	"distconv/core/input"
	"distconv/core/output"
	"distconv/core/units"
	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
)

// Handler executes conversion requests
type Handler struct {
	policy  input.Policy
	scanner *batch.Scanner
	log     *zap.Logger
}

// NewHandler creates a handler applying policy to request values
func NewHandler(policy input.Policy) *Handler {
	return &Handler{
		policy:  policy,
		scanner: batch.NewScanner(),
		log:     logging.Named("api"),
	}
}

// Convert executes a single conversion request
func (h *Handler) Convert(req *ConvertRequest) (*ConvertResponse, error) {
	from, err := units.ParseUnit(req.From)
	if err != nil {
		return nil, err
	}
	to, err := units.ParseUnit(req.To)
	if err != nil {
		return nil, err
	}
	value, err := h.parseValue(req.Value)
	if err != nil {
		return nil, err
	}

	in := conversion.NewDistance(value, from)
	out := in.To(to)
	if math.IsInf(out.Value, 0) {
		return nil, apperrors.Newf(apperrors.TypeInput, "%v %s does not fit in %s", value, from, to)
	}

	h.log.Debug("converted",
		logging.Unit("from", from), logging.Unit("to", to),
		logging.Value(value), logging.Result(out.Value))

	resp := &ConvertResponse{
		Input:  distanceView(in),
		Output: distanceView(out),
	}
	if req.Exact {
		if d, ok := conversion.ConvertFloatExact(value, from, to); ok {
			resp.Exact = output.FormatDecimal(d, conversion.DivisionPrecision)
		}
	}
	return resp, nil
}

// Batch scans an HCL batch document and converts every valid block
func (h *Handler) Batch(ctx context.Context, src []byte, exact bool) (*BatchResponse, error) {
	scan, err := h.scanner.Scan(ctx, src, "request.hcl")
	if err != nil {
		return nil, err
	}

	resp := &BatchResponse{Results: make([]BatchEntry, 0, len(scan.Requests))}
	for _, se := range scan.Errors {
		resp.Errors = append(resp.Errors, se.Error())
	}

	for _, req := range scan.Requests {
		in := conversion.NewDistance(req.Value, req.From)
		out := in.To(req.To)
		if math.IsInf(out.Value, 0) {
			resp.Errors = append(resp.Errors, batch.ScanError{
				File: req.File, Line: req.Line, Block: req.Name, Message: "result out of range",
			}.Error())
			continue
		}

		entry := BatchEntry{
			Name:   req.Name,
			Line:   req.Line,
			Input:  distanceView(in),
			Output: distanceView(out),
		}
		if exact {
			if d, ok := conversion.ConvertFloatExact(req.Value, req.From, req.To); ok {
				entry.Exact = output.FormatDecimal(d, conversion.DivisionPrecision)
			}
		}
		resp.Results = append(resp.Results, entry)
	}
	return resp, nil
}

// parseValue accepts a JSON number, a numeric string, null or nothing
func (h *Handler) parseValue(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)

	switch {
	case len(raw) == 0 || text == "null":
		text = ""
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, apperrors.Wrap(apperrors.TypeInput, "invalid value", err)
		}
	}
	return input.ParseValue(text, h.policy)
}

// Systems lists both measurement systems with their units
func Systems() []SystemView {
	out := make([]SystemView, 0, 2)
	for _, sys := range units.Systems() {
		out = append(out, SystemView{
			System: sys,
			Label:  sys.Label(),
			Units:  unitViews(units.For(sys)),
		})
	}
	return out
}

func unitViews(list []units.DistanceUnit) []UnitView {
	views := make([]UnitView, 0, len(list))
	for _, u := range list {
		views = append(views, UnitView{
			Unit:        u,
			Label:       u.Label(),
			Symbol:      u.Symbol(),
			System:      u.System(),
			Millimeters: conversion.ExactScaleFactor(u).String(),
		})
	}
	return views
}

func distanceView(d conversion.Distance) DistanceView {
	return DistanceView{
		Value:     d.Value,
		Unit:      d.Unit,
		Label:     d.Unit.Label(),
		System:    d.Unit.System(),
		Formatted: output.FormatNumber(d.Value),
	}
}
