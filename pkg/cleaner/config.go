// Package cleaner normalizes rich-text HTML pasted from word processors
// into the constrained dialect Moodle's content editor accepts.
// It parses the input leniently, applies an ordered set of tree-rewriting
// passes, and serializes the surviving fragment.
package cleaner

import (
	"github.com/go-playground/validator/v10"
)

// StyleFilterMode selects how style attributes are handled.
type StyleFilterMode string

const (
	// StyleKeepAlignment keeps a single valid text-align declaration and
	// drops everything else from the style attribute.
	StyleKeepAlignment StyleFilterMode = "alignment"

	// StyleStrip removes the style attribute from every element.
	StyleStrip StyleFilterMode = "strip"
)

// Config defines all options for the cleaning pipeline. Each pass is
// independently toggleable; disabling a pass skips that stage only.
type Config struct {
	// === Removal passes ===

	// RemoveComments deletes HTML comment nodes.
	RemoveComments bool `json:"remove_comments" yaml:"remove_comments"`

	// RemoveOfficeMarkup deletes Word-specific tags (o:p, v:shape, xml,
	// style blocks) and attributes with the mso/o: vendor prefixes.
	RemoveOfficeMarkup bool `json:"remove_office_markup" yaml:"remove_office_markup"`

	// EnforceTagAllowlist unwraps every element whose tag is outside the
	// Moodle-safe vocabulary, keeping its children.
	EnforceTagAllowlist bool `json:"enforce_tag_allowlist" yaml:"enforce_tag_allowlist"`

	// RemoveEmptyTags deletes elements with no meaningful content,
	// including Quill's <p><br></p> placeholders.
	RemoveEmptyTags bool `json:"remove_empty_tags" yaml:"remove_empty_tags"`

	// === Structure passes ===

	// InferHeadings promotes short paragraphs with large font sizes to
	// h2/h3/h4 based on the point size found in their style attribute.
	// Must run before style filtering removes font-size.
	InferHeadings bool `json:"infer_headings" yaml:"infer_headings"`

	// UnwrapSpans removes span and legacy font wrappers while keeping
	// their content.
	UnwrapSpans bool `json:"unwrap_spans" yaml:"unwrap_spans"`

	// ConvertBoldItalic renames b to strong and i to em. The pipeline
	// currently applies this rename on every run regardless of the flag;
	// the field is kept so callers can express intent if that changes.
	ConvertBoldItalic bool `json:"convert_bold_italic" yaml:"convert_bold_italic"`

	// === Attribute passes ===

	// StyleFilter selects alignment-preserving or full style stripping.
	StyleFilter StyleFilterMode `json:"style_filter" yaml:"style_filter" validate:"omitempty,oneof=alignment strip"`

	// EnforceAttributeAllowlist deletes attributes outside the per-tag
	// allowlist (href on links, src on images, colspan on cells, ...).
	// The style attribute is exempt; StyleFilter owns it.
	EnforceAttributeAllowlist bool `json:"enforce_attribute_allowlist" yaml:"enforce_attribute_allowlist"`

	// RemoveClasses deletes class attributes. Redundant with the
	// attribute allowlist today, kept as an independent toggle in case
	// the allowlist is ever extended to permit classes.
	RemoveClasses bool `json:"remove_classes" yaml:"remove_classes"`

	// RemoveIDs deletes id attributes. Same safety-net status as
	// RemoveClasses.
	RemoveIDs bool `json:"remove_ids" yaml:"remove_ids"`

	// === Text passes ===

	// CollapseWhitespace normalizes runs of whitespace inside text nodes
	// to single spaces. Tag boundaries are never crossed.
	CollapseWhitespace bool `json:"collapse_whitespace" yaml:"collapse_whitespace"`

	// === Selector-based rules ===

	// RemoveSelectors is a list of CSS selectors whose matches are
	// deleted outright before any other pass runs.
	RemoveSelectors []string `json:"remove_selectors" yaml:"remove_selectors"`

	// KeepSelectors lists CSS selectors that override RemoveSelectors.
	KeepSelectors []string `json:"keep_selectors" yaml:"keep_selectors"`

	// === Output ===

	// PrettyPrint additionally renders an indented copy of the cleaned
	// fragment with blank-line runs collapsed.
	PrettyPrint bool `json:"pretty_print" yaml:"pretty_print"`

	// EmitCompact additionally renders a whitespace-minimized copy that
	// keeps newlines as block boundaries.
	EmitCompact bool `json:"emit_compact" yaml:"emit_compact"`

	// EmitMarkdown additionally renders a Markdown copy of the cleaned
	// fragment.
	EmitMarkdown bool `json:"emit_markdown" yaml:"emit_markdown"`
}

// DefaultConfig returns the configuration used by the Moodle paste
// cleaner UI: every normalization pass on, styles stripped entirely,
// script-class elements removed with their content.
func DefaultConfig() *Config {
	return &Config{
		RemoveComments:      true,
		RemoveOfficeMarkup:  true,
		EnforceTagAllowlist: true,
		RemoveEmptyTags:     true,

		InferHeadings:     true,
		UnwrapSpans:       true,
		ConvertBoldItalic: true,

		StyleFilter:               StyleStrip,
		EnforceAttributeAllowlist: true,
		RemoveClasses:             true,
		RemoveIDs:                 true,

		CollapseWhitespace: true,

		// Unwrapping these would spill raw script/css text into the
		// document, so they are deleted with their content instead.
		RemoveSelectors: []string{
			"script",
			"noscript",
			"iframe",
			"svg",
			"object",
			"embed",
		},
	}
}

// PresetMinimal returns a conservative configuration that only removes
// comments and Office markup and tidies whitespace. Alignment styles
// survive; nothing else is restructured.
func PresetMinimal() *Config {
	return &Config{
		RemoveComments:     true,
		RemoveOfficeMarkup: true,
		CollapseWhitespace: true,
		StyleFilter:        StyleKeepAlignment,
	}
}

// PresetStrict returns the default configuration with alignment
// preservation swapped in and the pretty-printed copy enabled. Intended
// for course content where centered headings matter.
func PresetStrict() *Config {
	cfg := DefaultConfig()
	cfg.StyleFilter = StyleKeepAlignment
	cfg.PrettyPrint = true
	return cfg
}

// Merge merges another config into this one. Boolean passes from other
// win when set; selectors are appended and deduplicated.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c

	if other.RemoveComments {
		merged.RemoveComments = true
	}
	if other.RemoveOfficeMarkup {
		merged.RemoveOfficeMarkup = true
	}
	if other.EnforceTagAllowlist {
		merged.EnforceTagAllowlist = true
	}
	if other.RemoveEmptyTags {
		merged.RemoveEmptyTags = true
	}
	if other.InferHeadings {
		merged.InferHeadings = true
	}
	if other.UnwrapSpans {
		merged.UnwrapSpans = true
	}
	if other.ConvertBoldItalic {
		merged.ConvertBoldItalic = true
	}
	if other.StyleFilter != "" {
		merged.StyleFilter = other.StyleFilter
	}
	if other.EnforceAttributeAllowlist {
		merged.EnforceAttributeAllowlist = true
	}
	if other.RemoveClasses {
		merged.RemoveClasses = true
	}
	if other.RemoveIDs {
		merged.RemoveIDs = true
	}
	if other.CollapseWhitespace {
		merged.CollapseWhitespace = true
	}
	if other.PrettyPrint {
		merged.PrettyPrint = true
	}
	if other.EmitCompact {
		merged.EmitCompact = true
	}
	if other.EmitMarkdown {
		merged.EmitMarkdown = true
	}

	merged.RemoveSelectors = appendUnique(merged.RemoveSelectors, other.RemoveSelectors)
	merged.KeepSelectors = appendUnique(merged.KeepSelectors, other.KeepSelectors)

	return &merged
}

func appendUnique(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

var configValidator = validator.New()

// Validate reports a malformed configuration, such as an unknown
// StyleFilter mode. A failure here is a caller programming error, not a
// runtime condition the pipeline recovers from.
func (c *Config) Validate() error {
	return configValidator.Struct(c)
}
