// Package batch reads HCL files of named conversion requests.
//
//	locals {
//	  marathon = 26.2188
//	}
//
//	defaults {
//	  to = "kilometers"
//	}
//
//	conversion "marathon" {
//	  value = local.marathon
//	  from  = "miles"
//	}
package batch

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"

	"distconv/core/units"
	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
)

// Request is one conversion read from a batch file
type Request struct {
	Name  string
	Value float64
	From  units.DistanceUnit
	To    units.DistanceUnit
	File  string
	Line  int
}

// ScanError is a problem tied to a location in a batch file
type ScanError struct {
	File    string
	Line    int
	Block   string
	Message string
}

func (e ScanError) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("%s:%d: conversion %q: %s", e.File, e.Line, e.Block, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// ScanResult holds the valid requests and the errors of one file
type ScanResult struct {
	Requests []Request
	Errors   []ScanError
}

// HasErrors reports whether any block was rejected
func (r *ScanResult) HasErrors() bool {
	return len(r.Errors) > 0
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "locals"},
		{Type: "defaults"},
		{Type: "conversion", LabelNames: []string{"name"}},
	},
}

// Scanner parses batch files
type Scanner struct {
	parser *hclparse.Parser
}

// NewScanner creates a new batch scanner
func NewScanner() *Scanner {
	return &Scanner{
		parser: hclparse.NewParser(),
	}
}

// ScanFile reads and scans path. Only an unreadable file is returned as an
// error; problems inside the file are collected in the result.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*ScanResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("batch file", path)
		}
		return nil, apperrors.Parsing("failed to read batch file", err)
	}
	return s.Scan(ctx, src, path)
}

// Scan parses src, using filename for positions
func (s *Scanner) Scan(ctx context.Context, src []byte, filename string) (*ScanResult, error) {
	log := logging.Named("batch")
	result := &ScanResult{}

	file, diags := s.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		result.addDiags(filename, "", diags)
		return result, nil
	}

	content, diags := file.Body.Content(fileSchema)
	result.addDiags(filename, "", diags)

	// locals and defaults apply to every conversion wherever they appear,
	// so they are evaluated first.
	locals := make(map[string]cty.Value)
	var defaultTo *units.DistanceUnit
	seenDefaults := false
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}

	for _, block := range content.Blocks {
		if block.Type != "locals" {
			continue
		}
		for _, l := range result.evalLocals(filename, block) {
			if _, dup := locals[l.name]; dup {
				result.addError(filename, l.line, "", fmt.Sprintf("duplicate local %q", l.name))
				continue
			}
			locals[l.name] = l.val
		}
	}
	evalCtx.Variables["local"] = cty.ObjectVal(locals)

	for _, block := range content.Blocks {
		if block.Type != "defaults" {
			continue
		}
		if seenDefaults {
			result.addError(filename, block.DefRange.Start.Line, "", "only one defaults block is allowed")
			continue
		}
		seenDefaults = true
		defaultTo = result.evalDefaults(filename, block, evalCtx)
	}

	seenNames := make(map[string]int)
	for _, block := range content.Blocks {
		if block.Type != "conversion" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, line := block.Labels[0], block.DefRange.Start.Line
		if first, dup := seenNames[name]; dup {
			result.addError(filename, line, name, fmt.Sprintf("duplicate conversion, first defined on line %d", first))
			continue
		}
		seenNames[name] = line

		if req, ok := result.evalConversion(filename, block, evalCtx, defaultTo); ok {
			result.Requests = append(result.Requests, req)
		}
	}

	log.Debug("scanned batch file",
		zap.String("file", filename),
		zap.Int("requests", len(result.Requests)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

type local struct {
	name string
	line int
	val  cty.Value
}

// sortedAttrs returns attrs in source order so errors come out in file order
func sortedAttrs(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}

func (r *ScanResult) evalLocals(filename string, block *hcl.Block) []local {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		r.addDiags(filename, "", diags)
		return nil
	}

	locals := make([]local, 0, len(attrs))
	for _, attr := range sortedAttrs(attrs) {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			r.addDiags(filename, "", diags)
			continue
		}
		locals = append(locals, local{name: attr.Name, line: attr.Range.Start.Line, val: val})
	}
	return locals
}

func (r *ScanResult) evalDefaults(filename string, block *hcl.Block, evalCtx *hcl.EvalContext) *units.DistanceUnit {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		r.addDiags(filename, "", diags)
		return nil
	}

	for _, attr := range sortedAttrs(attrs) {
		if attr.Name != "to" {
			r.addError(filename, attr.Range.Start.Line, "", fmt.Sprintf("unsupported defaults attribute %q", attr.Name))
		}
	}

	attr, ok := attrs["to"]
	if !ok {
		return nil
	}
	u, err := r.evalUnit(evalCtx, attr)
	if err != nil {
		r.addError(filename, attr.Range.Start.Line, "", err.Error())
		return nil
	}
	return &u
}

func (r *ScanResult) evalConversion(filename string, block *hcl.Block, evalCtx *hcl.EvalContext, defaultTo *units.DistanceUnit) (Request, bool) {
	name := block.Labels[0]
	req := Request{Name: name, File: filename, Line: block.DefRange.Start.Line}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		r.addDiags(filename, name, diags)
		return req, false
	}

	ok := true
	fail := func(line int, msg string) {
		r.addError(filename, line, name, msg)
		ok = false
	}

	for _, attr := range sortedAttrs(attrs) {
		switch attr.Name {
		case "value", "from", "to":
		default:
			fail(attr.Range.Start.Line, fmt.Sprintf("unsupported attribute %q", attr.Name))
		}
	}

	if attr, found := attrs["value"]; found {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			r.addDiags(filename, name, diags)
			ok = false
		} else if safe, err := toSafe("value", val, cty.Number); err != nil {
			fail(attr.Range.Start.Line, err.Error())
		} else {
			req.Value = safe.AsFloat()
		}
	} else {
		fail(req.Line, `missing required attribute "value"`)
	}

	if attr, found := attrs["from"]; found {
		u, err := r.evalUnit(evalCtx, attr)
		if err != nil {
			fail(attr.Range.Start.Line, err.Error())
		}
		req.From = u
	} else {
		fail(req.Line, `missing required attribute "from"`)
	}

	switch attr, found := attrs["to"]; {
	case found:
		u, err := r.evalUnit(evalCtx, attr)
		if err != nil {
			fail(attr.Range.Start.Line, err.Error())
		}
		req.To = u
	case defaultTo != nil:
		req.To = *defaultTo
	default:
		fail(req.Line, `missing attribute "to" and no defaults block sets it`)
	}

	return req, ok
}

func (r *ScanResult) evalUnit(evalCtx *hcl.EvalContext, attr *hcl.Attribute) (units.DistanceUnit, error) {
	val, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	safe, err := toSafe(attr.Name, val, cty.String)
	if err != nil {
		return 0, err
	}
	return units.ParseUnit(safe.AsString())
}

func (r *ScanResult) addError(file string, line int, block, msg string) {
	r.Errors = append(r.Errors, ScanError{File: file, Line: line, Block: block, Message: msg})
}

func (r *ScanResult) addDiags(file, block string, diags hcl.Diagnostics) {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		r.addError(file, line, block, msg)
	}
}
