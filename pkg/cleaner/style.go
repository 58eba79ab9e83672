package cleaner

import (
	"regexp"
	"strconv"
	"strings"
)

// styleDecl is a parsed style attribute: an ordered property→value
// mapping. Property names are unique; a later duplicate in the source
// string overwrites the earlier value.
type styleDecl struct {
	order []string
	props map[string]string
}

// parseStyle parses a CSS style attribute value. Segments are split on
// semicolons, each on its first colon. Keys are lowercased and trimmed,
// values trimmed. Segments without a colon or with an empty key are
// skipped silently.
func parseStyle(value string) *styleDecl {
	d := &styleDecl{props: make(map[string]string)}
	for _, segment := range strings.Split(value, ";") {
		name, val, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, seen := d.props[name]; !seen {
			d.order = append(d.order, name)
		}
		d.props[name] = strings.TrimSpace(val)
	}
	return d
}

// get returns the value of a property by lowercased name.
func (d *styleDecl) get(name string) (string, bool) {
	v, ok := d.props[name]
	return v, ok
}

// fontSizeRE accepts a decimal number followed by a px or pt unit,
// tolerating surrounding whitespace and any unit casing.
var fontSizeRE = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(px|pt)\s*$`)

// fontSizeToPoints converts a CSS font-size value to points. pt values
// pass through; px values are multiplied by 0.75, the fixed CSS
// reference-pixel ratio rather than anything DPI-aware. Other units and
// malformed numbers report no value, not an error.
func fontSizeToPoints(value string) (float64, bool) {
	m := fontSizeRE.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if strings.EqualFold(m[2], "px") {
		n *= 0.75
	}
	return n, true
}

// validAlignments are the text-align values worth keeping.
var validAlignments = map[string]bool{
	"left": true, "right": true, "center": true, "justify": true,
}

// alignmentFrom extracts a usable text-align value from a style
// attribute, lowercased, or reports none.
func alignmentFrom(style string) (string, bool) {
	v, ok := parseStyle(style).get("text-align")
	if !ok {
		return "", false
	}
	v = strings.ToLower(v)
	if !validAlignments[v] {
		return "", false
	}
	return v, true
}
