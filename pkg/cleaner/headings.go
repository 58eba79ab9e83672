package cleaner

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxHeadingTextLen is the longest trimmed text a block may carry and
// still be considered a heading candidate. Anything longer is body text
// no matter how large its font.
const maxHeadingTextLen = 120

// headingRules map a minimum point size to a heading tag. Checked in
// order, largest first; the first match wins.
var headingRules = []struct {
	minPoints float64
	tag       string
}{
	{22, "h2"},
	{18, "h3"},
	{16, "h4"},
}

// inferHeadings promotes short paragraph-like blocks to headings based
// on the font size Word left in their style attributes. The element is
// renamed in place so its children and position are untouched. Runs
// before style filtering, which would otherwise remove the font-size
// evidence.
func (c *Cleaner) inferHeadings(root *html.Node, stats *Stats) PhaseStat {
	phase := PhaseStat{Name: "headings"}

	for _, el := range elementsIn(root) {
		if !headingCandidateTags[el.Data] {
			continue
		}
		// Blocks inside list items stay list content.
		if insideListItem(el) {
			continue
		}
		text := strings.TrimSpace(textContent(el))
		if text == "" || utf8.RuneCountInString(text) > maxHeadingTextLen {
			continue
		}
		points, ok := effectiveFontSize(el)
		if !ok {
			continue
		}
		for _, rule := range headingRules {
			if points >= rule.minPoints {
				rename(el, rule.tag)
				phase.ElementsRenamed++
				stats.HeadingsInferred++
				break
			}
		}
	}
	return phase
}

// effectiveFontSize finds the block's font size in points: its own
// style's font-size first, else the style of its first child element
// when that child is a styling wrapper (Word often styles the run
// instead of the paragraph).
func effectiveFontSize(el *html.Node) (float64, bool) {
	if pts, ok := fontSizeOf(el); ok {
		return pts, true
	}
	if child := firstChildElement(el); child != nil && stylingWrapperTags[child.Data] {
		return fontSizeOf(child)
	}
	return 0, false
}

func fontSizeOf(el *html.Node) (float64, bool) {
	style, ok := getAttr(el, "style")
	if !ok {
		return 0, false
	}
	v, ok := parseStyle(style).get("font-size")
	if !ok {
		return 0, false
	}
	return fontSizeToPoints(v)
}
