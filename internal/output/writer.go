// Package output serializes cleaning reports for the CLI. A report pairs
// the input name with the pipeline statistics and warnings so batch runs
// can be inspected per file.
package output

import (
	"fmt"
	"io"

	"github.com/virtual-educator/moodleclean/pkg/cleaner"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Report is one cleaned input's accounting: where it came from, what the
// pipeline did to it, and anything that went wrong along the way.
type Report struct {
	Source   string            `json:"source" yaml:"source"`
	Stats    *cleaner.Stats    `json:"stats" yaml:"stats"`
	Warnings []cleaner.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewReport builds a report from a cleaning result.
func NewReport(source string, result *cleaner.Result) Report {
	return Report{
		Source:   source,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	}
}

// Writer handles report serialization.
type Writer interface {
	// Write outputs a single report.
	Write(r Report) error

	// Flush ensures all buffered reports are written.
	Flush() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
