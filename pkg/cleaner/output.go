package cleaner

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
)

// generateOutput serializes the cleaned tree and fills in the optional
// renderings. Rendering failures degrade to the original input with a
// warning, never an error to the caller.
func (c *Cleaner) generateOutput(frag *fragment, result *Result) {
	content, err := serializeContents(frag.root)
	if err != nil {
		result.Content = ""
		result.AddWarning("output", "rendering cleaned tree failed", err.Error())
		return
	}
	result.Content = content
	result.Stats.OutputBytes = len(content)

	if c.config.PrettyPrint {
		result.Pretty = PrettyPrint(content)
	}
	if c.config.EmitCompact {
		result.Compact = CompactPrint(content)
	}
	if c.config.EmitMarkdown {
		markdown, err := htmltomarkdown.ConvertString(content)
		if err != nil {
			result.AddWarning("output", "markdown conversion failed", err.Error())
		} else {
			result.Markdown = strings.TrimSpace(markdown)
		}
	}
}

// serializeContents renders only the root's children, never the
// synthetic wrapper itself, trimmed of leading and trailing whitespace.
func serializeContents(root *html.Node) (string, error) {
	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// PrettyPrint re-parses the fragment and renders it with indentation
// reflecting nesting depth, then collapses runs of two or more blank
// lines down to exactly one.
func PrettyPrint(fragment string) string {
	return collapseBlankLines(gohtml.Format(fragment))
}

// collapseBlankLines keeps at most one consecutive blank line.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// interiorWSRE matches runs of spaces/tabs.
var interiorWSRE = regexp.MustCompile(`[ \t]+`)

// CompactPrint minimizes whitespace while preserving newlines as block
// boundaries: each line loses its leading and trailing whitespace, and
// interior space/tab runs collapse to a single space.
func CompactPrint(fragment string) string {
	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		lines[i] = interiorWSRE.ReplaceAllString(line, " ")
	}
	return strings.Join(lines, "\n")
}
