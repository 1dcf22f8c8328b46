// Package output provides output formatting interfaces.
// This package produces human and machine-readable conversion results.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"distconv/core/conversion"
	"distconv/core/units"
	apperrors "distconv/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is human-readable text
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown table
	FormatMarkdown Format = "markdown"
)

// Result is one conversion ready to be rendered
type Result struct {
	// Name labels the conversion in batch output
	Name string

	// Input is the distance as entered
	Input conversion.Distance

	// Output is the converted distance
	Output conversion.Distance

	// Exact is the decimal result, when requested
	Exact string

	// Err is set when this conversion could not be performed
	Err error
}

// NewResult converts in to the target unit and wraps both sides
func NewResult(name string, in conversion.Distance, to units.DistanceUnit) *Result {
	return &Result{Name: name, Input: in, Output: in.To(to)}
}

// WithExact fills Exact from the decimal engine. Non-finite inputs are left as is.
func (r *Result) WithExact() *Result {
	if d, ok := conversion.ConvertFloatExact(r.Input.Value, r.Input.Unit, r.Output.Unit); ok {
		r.Exact = FormatDecimal(d, conversion.DivisionPrecision)
	}
	return r
}

// Sentence renders "<in> <unit> converts into <out> <unit>" on one line
func (r *Result) Sentence() string {
	return fmt.Sprintf("%s %s converts into %s %s",
		FormatNumber(r.Input.Value), r.Input.Unit,
		r.outputValue(), r.Output.Unit)
}

func (r *Result) outputValue() string {
	if r.Exact != "" {
		return r.Exact
	}
	return FormatNumber(r.Output.Value)
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes results to w
	Render(w io.Writer, results []*Result) error
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format name
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[Format(strings.ToLower(name))]
	if !ok {
		return nil, apperrors.Newf(apperrors.TypeInput, "unknown output format %q (want one of %s)",
			name, strings.Join(r.namesLocked(), ", "))
	}
	return f, nil
}

// Names returns the registered format names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns a registry with the cli, json and markdown formatters
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		_ = defaultRegistry.Register(&CLIFormatter{})
		_ = defaultRegistry.Register(&JSONFormatter{Indent: "  "})
		_ = defaultRegistry.Register(&MarkdownFormatter{})
	})
	return defaultRegistry
}
