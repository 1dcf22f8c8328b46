// Package ui - Terminal user interface
// Colored CLI output: status lines, tables and the conversion card.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"distconv/core/conversion"
	"distconv/core/output"
	"distconv/core/units"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// line writes s verbatim
func (w *Writer) line(s string) {
	fmt.Fprintln(w.out, s)
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.line(w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.line(w.color(Green, "✓ ") + fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.line(w.color(Yellow, "⚠ ") + fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.line(w.color(Red, "✗ ") + fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.line(w.color(Blue, "ℹ ") + fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.line(w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	t.w.line(t.w.color(Bold, t.join(t.headers)))

	seps := make([]string, len(t.widths))
	for i, w := range t.widths {
		seps[i] = strings.Repeat("─", w)
	}
	t.w.line(strings.Join(seps, "─┼─"))

	for _, row := range t.rows {
		t.w.line(t.join(row))
	}
}

func (t *Table) join(cells []string) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = c + strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(c))
	}
	return strings.TrimRight(strings.Join(padded, " │ "), " ")
}

// ConversionCard renders a single conversion result in a box
func (w *Writer) ConversionCard(r *output.Result) {
	from := fmt.Sprintf("%s %s", output.FormatNumber(r.Input.Value), r.Input.Unit.Label())
	value := output.FormatNumber(r.Output.Value)
	if r.Exact != "" {
		value = r.Exact
	}
	to := fmt.Sprintf("%s %s", value, r.Output.Unit.Label())

	width := utf8.RuneCountInString(from)
	if n := utf8.RuneCountInString(to); n > width {
		width = n
	}
	if width < len("converts into") {
		width = len("converts into")
	}

	pad := func(s string) string {
		return s + strings.Repeat(" ", width-utf8.RuneCountInString(s))
	}

	border := strings.Repeat("─", width+4)
	w.line(w.color(Bold, "╭"+border+"╮"))
	w.line(w.color(Bold, "│  ") + pad(from) + w.color(Bold, "  │"))
	w.line(w.color(Bold, "│  ") + w.color(Dim, pad("converts into")) + w.color(Bold, "  │"))
	w.line(w.color(Bold, "│  ") + w.color(Green, pad(to)) + w.color(Bold, "  │"))
	w.line(w.color(Bold, "╰"+border+"╯"))
}

// UnitCatalog prints the units of each given system
func (w *Writer) UnitCatalog(systems ...units.MeasurementSystem) {
	for _, sys := range systems {
		w.SubHeader(sys.Label())
		table := w.NewTable("Unit", "Symbol", "Millimeters")
		for _, u := range units.For(sys) {
			table.AddRow(u.Label(), u.Symbol(), millimetersPer(u))
		}
		table.Render()
		w.line("")
	}
}

func millimetersPer(u units.DistanceUnit) string {
	return conversion.ExactScaleFactor(u).String()
}
