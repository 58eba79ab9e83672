package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter buffers reports and flushes them as one YAML document.
type YAMLWriter struct {
	w       *bufio.Writer
	reports []Report
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write buffers a report for the final document.
func (w *YAMLWriter) Write(r Report) error {
	w.reports = append(w.reports, r)
	return nil
}

// Flush writes the buffered reports.
func (w *YAMLWriter) Flush() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	var doc any = w.reports
	if len(w.reports) == 1 {
		doc = w.reports[0]
	}

	if err := encoder.Encode(doc); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	return w.w.Flush()
}
