package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// CLIFormatter renders plain text. A single unnamed result uses the
// three-line "converts into" layout; anything else gets one line per result.
type CLIFormatter struct{}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes results as text
func (f *CLIFormatter) Render(w io.Writer, results []*Result) error {
	if len(results) == 1 && results[0].Name == "" && results[0].Err == nil {
		r := results[0]
		_, err := fmt.Fprintf(w, "%s %s\nconverts into\n%s %s\n",
			FormatNumber(r.Input.Value), r.Input.Unit,
			r.outputValue(), r.Output.Unit)
		return err
	}

	for i, r := range results {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		var line string
		if r.Err != nil {
			line = fmt.Sprintf("%s: error: %v", name, r.Err)
		} else {
			line = fmt.Sprintf("%s: %s", name, r.Sentence())
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter renders a JSON array of results
type JSONFormatter struct {
	Indent string
}

type jsonDistance struct {
	// Value is omitted when not representable in JSON (NaN, Inf)
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit"`
	Formatted string   `json:"formatted"`
}

type jsonResult struct {
	Name   string       `json:"name,omitempty"`
	Input  jsonDistance `json:"input"`
	Output jsonDistance `json:"output"`
	Exact  string       `json:"exact,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes results as JSON
func (f *JSONFormatter) Render(w io.Writer, results []*Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{Name: r.Name}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Input = toJSONDistance(r.Input.Value, r.Input.Unit.String())
			jr.Output = toJSONDistance(r.Output.Value, r.Output.Unit.String())
			jr.Exact = r.Exact
		}
		out = append(out, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(out)
}

func toJSONDistance(v float64, unit string) jsonDistance {
	d := jsonDistance{Unit: unit, Formatted: FormatNumber(v)}
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		d.Value = &v
	}
	return d
}

// MarkdownFormatter renders a markdown table
type MarkdownFormatter struct{}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes results as a markdown table
func (f *MarkdownFormatter) Render(w io.Writer, results []*Result) error {
	var b strings.Builder
	b.WriteString("| Name | Input | Output |\n")
	b.WriteString("|---|---:|---:|\n")
	for i, r := range results {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if r.Err != nil {
			fmt.Fprintf(&b, "| %s | error | %s |\n", name, escapePipes(r.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "| %s | %s %s | %s %s |\n", name,
			FormatNumber(r.Input.Value), r.Input.Unit,
			r.outputValue(), r.Output.Unit)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
