package cleaner

import (
	"fmt"
	"strings"
	"time"
)

// PhaseStat records what one pipeline pass did.
type PhaseStat struct {
	Name              string        `json:"name" yaml:"name"`
	ElementsRemoved   int           `json:"elements_removed" yaml:"elements_removed"`
	ElementsUnwrapped int           `json:"elements_unwrapped" yaml:"elements_unwrapped"`
	ElementsRenamed   int           `json:"elements_renamed" yaml:"elements_renamed"`
	AttributesRemoved int           `json:"attributes_removed" yaml:"attributes_removed"`
	Duration          time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// Stats captures metrics about one cleaning run.
type Stats struct {
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// ElementsRemoved counts deleted elements by tag.
	ElementsRemoved map[string]int `json:"elements_removed" yaml:"elements_removed"`
	// ElementsUnwrapped counts elements replaced by their children.
	ElementsUnwrapped int `json:"elements_unwrapped" yaml:"elements_unwrapped"`
	// HeadingsInferred counts paragraphs promoted to headings.
	HeadingsInferred  int `json:"headings_inferred" yaml:"headings_inferred"`
	AttributesRemoved int `json:"attributes_removed" yaml:"attributes_removed"`
	CommentsRemoved   int `json:"comments_removed" yaml:"comments_removed"`
	ElementsKept      int `json:"elements_kept" yaml:"elements_kept"`

	Phases []PhaseStat `json:"phases" yaml:"phases"`

	ParseDuration     time.Duration `json:"parse_duration_ns" yaml:"parse_duration_ns"`
	TransformDuration time.Duration `json:"transform_duration_ns" yaml:"transform_duration_ns"`
	OutputDuration    time.Duration `json:"output_duration_ns" yaml:"output_duration_ns"`
	TotalDuration     time.Duration `json:"total_duration_ns" yaml:"total_duration_ns"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
	}
}

// RecordRemoval records that an element was deleted.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// TotalElementsRemoved sums the per-tag removal counts.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// GetPhase returns the stats for a named pass, or nil.
func (s *Stats) GetPhase(name string) *PhaseStat {
	for i := range s.Phases {
		if s.Phases[i].Name == name {
			return &s.Phases[i]
		}
	}
	return nil
}

// addPhase appends a pass record and folds its counters into the totals.
func (s *Stats) addPhase(p PhaseStat) {
	s.Phases = append(s.Phases, p)
	s.ElementsUnwrapped += p.ElementsUnwrapped
	s.AttributesRemoved += p.AttributesRemoved
}

// String returns a human-readable summary.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))
	sb.WriteString(fmt.Sprintf("Elements: %d removed, %d unwrapped, %d kept\n",
		s.TotalElementsRemoved(), s.ElementsUnwrapped, s.ElementsKept))

	if len(s.ElementsRemoved) > 0 {
		parts := make([]string, 0, len(s.ElementsRemoved))
		for tag, count := range s.ElementsRemoved {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, count))
		}
		sb.WriteString("Removed by tag: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.HeadingsInferred > 0 {
		sb.WriteString(fmt.Sprintf("Headings inferred: %d\n", s.HeadingsInferred))
	}
	if s.AttributesRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Attributes removed: %d\n", s.AttributesRemoved))
	}
	if s.CommentsRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Comments removed: %d\n", s.CommentsRemoved))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, output=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.OutputDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`
	Message string `json:"message" yaml:"message"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of one cleaning run.
type Result struct {
	// Content is the cleaned fragment. On parse failure it holds the
	// original input.
	Content string `json:"content" yaml:"content"`

	// Pretty is the indented rendering, set when Config.PrettyPrint is on.
	Pretty string `json:"pretty,omitempty" yaml:"pretty,omitempty"`

	// Compact is the whitespace-minimized rendering, set when
	// Config.EmitCompact is on.
	Compact string `json:"compact,omitempty" yaml:"compact,omitempty"`

	// Markdown is the Markdown rendering, set when Config.EmitMarkdown is on.
	Markdown string `json:"markdown,omitempty" yaml:"markdown,omitempty"`

	Stats    *Stats    `json:"stats" yaml:"stats"`
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Error is set only on catastrophic failures; Content still carries
	// the original input so callers degrade gracefully.
	Error error `json:"-" yaml:"-"`
}

// AddWarning appends a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{Phase: phase, Message: message, Context: context})
}

// HasWarnings reports whether any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
