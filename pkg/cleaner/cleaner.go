package cleaner

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Cleaner runs the normalization pipeline over pasted rich-text HTML.
// Each invocation parses its own tree, so a Cleaner is reusable across
// submissions; Stats reports the most recent run and makes concurrent
// use of one instance unsafe.
type Cleaner struct {
	config *Config
	stats  *Stats
}

// New creates a Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Cleaner{config: config}
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "moodleclean"
}

// Clean normalizes raw HTML and returns the cleaned fragment. Malformed
// markup degrades gracefully; the only way to get the input back
// verbatim is a parser-internal failure, which is reported through the
// Result warnings rather than an error here.
func (c *Cleaner) Clean(raw string) (string, error) {
	result := c.CleanWithStats(raw)
	return result.Content, nil
}

// CleanWithStats performs a full cleaning run and returns the cleaned
// fragment together with the optional renderings and detailed stats.
func (c *Cleaner) CleanWithStats(raw string) *Result {
	startTime := time.Now()
	result := &Result{Stats: NewStats()}
	result.Stats.InputBytes = len(raw)

	parseStart := time.Now()
	frag, err := parseFragment(raw)
	result.Stats.ParseDuration = time.Since(parseStart)

	if err != nil {
		// Not expected for HTML-class input, handled defensively.
		result.Content = raw
		result.Error = err
		result.AddWarning("parse", "HTML parse failed, returning original", err.Error())
		result.Stats.OutputBytes = len(raw)
		result.Stats.TotalDuration = time.Since(startTime)
		c.stats = result.Stats
		return result
	}

	transformStart := time.Now()
	c.transform(frag, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	c.generateOutput(frag, result)
	result.Stats.OutputDuration = time.Since(outputStart)

	result.Stats.TotalDuration = time.Since(startTime)
	c.stats = result.Stats

	return result
}

// Stats returns the stats from the last cleaning run.
func (c *Cleaner) Stats() *Stats {
	return c.stats
}

// transform applies the passes in their fixed order. Every pass is
// idempotent; disabling one is a no-op for that stage only and later
// passes run on whatever state precedes them.
func (c *Cleaner) transform(frag *fragment, result *Result) {
	stats := result.Stats

	if len(c.config.RemoveSelectors) > 0 {
		c.runPhase(stats, func() PhaseStat { return c.removeBySelectors(frag, stats) })
	}
	if c.config.RemoveComments {
		c.runPhase(stats, func() PhaseStat { return c.removeComments(frag.root, stats) })
	}
	if c.config.RemoveOfficeMarkup {
		c.runPhase(stats, func() PhaseStat { return c.removeOfficeMarkup(frag.root, stats) })
	}
	if c.config.EnforceTagAllowlist {
		c.runPhase(stats, func() PhaseStat { return c.enforceTagAllowlist(frag.root) })
	}
	if c.config.InferHeadings {
		c.runPhase(stats, func() PhaseStat { return c.inferHeadings(frag.root, stats) })
	}
	c.runPhase(stats, func() PhaseStat { return c.filterStyles(frag.root) })
	if c.config.EnforceAttributeAllowlist {
		c.runPhase(stats, func() PhaseStat { return c.enforceAttributeAllowlist(frag.root) })
	}
	if c.config.RemoveClasses || c.config.RemoveIDs {
		c.runPhase(stats, func() PhaseStat { return c.removeClassesAndIDs(frag.root) })
	}
	// b/i renaming is deliberately not gated on ConvertBoldItalic; see
	// the Config field comment.
	c.runPhase(stats, func() PhaseStat { return c.convertBoldItalic(frag.root) })
	if c.config.UnwrapSpans {
		c.runPhase(stats, func() PhaseStat { return c.unwrapSpans(frag.root) })
	}
	if c.config.RemoveEmptyTags {
		c.runPhase(stats, func() PhaseStat { return c.pruneEmpty(frag.root, stats) })
	}
	if c.config.CollapseWhitespace {
		c.runPhase(stats, func() PhaseStat { return c.collapseWhitespace(frag.root) })
	}

	for range elementsIn(frag.root) {
		stats.ElementsKept++
	}
}

// runPhase times a pass and records its stats.
func (c *Cleaner) runPhase(stats *Stats, pass func() PhaseStat) {
	start := time.Now()
	phase := pass()
	phase.Duration = time.Since(start)
	stats.addPhase(phase)
}

// removeBySelectors deletes elements matching the configured CSS
// selectors outright, content included. Matches that also satisfy a
// keep selector survive.
func (c *Cleaner) removeBySelectors(frag *fragment, stats *Stats) PhaseStat {
	phase := PhaseStat{Name: "selectors"}
	// Scoped to the synthetic wrapper so a broad selector like "div"
	// can never match the wrapper itself.
	doc := goquery.NewDocumentFromNode(frag.root)

	for _, selector := range c.config.RemoveSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if c.shouldKeep(s) {
				return
			}
			stats.RecordRemoval(goquery.NodeName(s))
			phase.ElementsRemoved++
			s.Remove()
		})
	}
	return phase
}

// shouldKeep checks a selection against the keep selectors.
func (c *Cleaner) shouldKeep(s *goquery.Selection) bool {
	for _, selector := range c.config.KeepSelectors {
		if s.Is(selector) {
			return true
		}
	}
	return false
}

// removeComments deletes comment nodes. Comments are real nodes in the
// parsed tree, so no output-phase fixup is needed.
func (c *Cleaner) removeComments(root *html.Node, stats *Stats) PhaseStat {
	phase := PhaseStat{Name: "comments"}
	var comments []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n)
		}
	})
	for _, n := range comments {
		detach(n)
		phase.ElementsRemoved++
		stats.CommentsRemoved++
	}
	return phase
}

// removeOfficeMarkup deletes Word/Office artifact elements with their
// content and strips vendor-prefixed attributes everywhere else.
func (c *Cleaner) removeOfficeMarkup(root *html.Node, stats *Stats) PhaseStat {
	phase := PhaseStat{Name: "office"}

	for _, el := range elementsIn(root) {
		if officeTags[el.Data] {
			stats.RecordRemoval(el.Data)
			phase.ElementsRemoved++
			detach(el)
		}
	}

	for _, el := range elementsIn(root) {
		kept := el.Attr[:0]
		for _, a := range el.Attr {
			if hasVendorPrefix(a.Key) {
				phase.AttributesRemoved++
				continue
			}
			kept = append(kept, a)
		}
		el.Attr = kept
	}
	return phase
}

func hasVendorPrefix(name string) bool {
	name = strings.ToLower(name)
	for _, prefix := range vendorAttrPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// enforceTagAllowlist unwraps every element outside the allowed
// vocabulary so its content survives without the wrapper. Unwrapping can
// surface nodes that still need a look in pathological nesting, so the
// scan repeats until a pass makes no change.
func (c *Cleaner) enforceTagAllowlist(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "tags"}
	for {
		changed := false
		for _, el := range elementsIn(root) {
			if allowedTags[el.Data] {
				continue
			}
			unwrap(el)
			phase.ElementsUnwrapped++
			changed = true
		}
		if !changed {
			return phase
		}
	}
}

// filterStyles applies the configured style attribute policy: keep only
// a valid text-align declaration, or strip the attribute everywhere.
func (c *Cleaner) filterStyles(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "styles"}
	keepAlignment := c.config.StyleFilter == StyleKeepAlignment

	for _, el := range elementsIn(root) {
		style, ok := getAttr(el, "style")
		if !ok {
			continue
		}
		if keepAlignment {
			if align, valid := alignmentFrom(style); valid {
				setAttr(el, "style", "text-align: "+align)
				continue
			}
		}
		removeAttr(el, "style")
		phase.AttributesRemoved++
	}
	return phase
}

// enforceAttributeAllowlist deletes every attribute outside the union of
// the global and per-tag allowlists. The style attribute is exempt: the
// style filter has already reduced it, and deleting it here would undo
// the alignment carve-out.
func (c *Cleaner) enforceAttributeAllowlist(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "attributes"}

	for _, el := range elementsIn(root) {
		perTag := allowedAttrsByTag[el.Data]
		kept := el.Attr[:0]
		for _, a := range el.Attr {
			key := strings.ToLower(a.Key)
			if key == "style" || globalAllowedAttrs[key] || perTag[key] {
				kept = append(kept, a)
				continue
			}
			phase.AttributesRemoved++
		}
		el.Attr = kept
	}
	return phase
}

// removeClassesAndIDs deletes class and id attributes per their
// independent toggles. The attribute allowlist already excludes both;
// these toggles stay as safety nets in case the allowlists change.
func (c *Cleaner) removeClassesAndIDs(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "class-id"}
	for _, el := range elementsIn(root) {
		if c.config.RemoveClasses && removeAttr(el, "class") {
			phase.AttributesRemoved++
		}
		if c.config.RemoveIDs && removeAttr(el, "id") {
			phase.AttributesRemoved++
		}
	}
	return phase
}

// convertBoldItalic renames presentational b/i tags to their semantic
// strong/em equivalents. Children stay attached; only the tag changes.
func (c *Cleaner) convertBoldItalic(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "semantics"}
	for _, el := range elementsIn(root) {
		switch el.Data {
		case "b":
			rename(el, "strong")
			phase.ElementsRenamed++
		case "i":
			rename(el, "em")
			phase.ElementsRenamed++
		}
	}
	return phase
}

// unwrapSpans splices every span's children into its parent. Legacy font
// wrappers are handled here too, kept alive this long for the same
// reason spans are: heading inference reads their font sizes.
func (c *Cleaner) unwrapSpans(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "spans"}
	for _, el := range elementsIn(root) {
		if el.Data == "span" || el.Data == "font" {
			unwrap(el)
			phase.ElementsUnwrapped++
		}
	}
	return phase
}

// pruneEmpty deletes effectively empty elements: non-void tags whose
// trimmed text is empty and whose children are only whitespace text or
// line breaks. Deleting a child can empty its parent, so the scan
// repeats until a full pass removes nothing.
func (c *Cleaner) pruneEmpty(root *html.Node, stats *Stats) PhaseStat {
	phase := PhaseStat{Name: "empty"}
	for {
		removed := 0
		for _, el := range elementsIn(root) {
			if !attached(el, root) {
				continue
			}
			if voidTags[el.Data] || !effectivelyEmpty(el) {
				continue
			}
			stats.RecordRemoval(el.Data)
			phase.ElementsRemoved++
			detach(el)
			removed++
		}
		if removed == 0 {
			return phase
		}
	}
}

// effectivelyEmpty reports whether el has no meaningful content: every
// child is whitespace-only text, a br, or an inert comment. Quill's
// <p><br></p> placeholder paragraphs match.
func effectivelyEmpty(el *html.Node) bool {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		case html.ElementNode:
			if c.Data != "br" {
				return false
			}
		case html.CommentNode:
			// Inert.
		default:
			return false
		}
	}
	return true
}

// wsRunRE matches runs of spaces, tabs, and line endings.
var wsRunRE = regexp.MustCompile(`[ \t\r\n]+`)

// collapseWhitespace normalizes whitespace runs to single spaces inside
// text nodes only. Comments are untouched and runs never merge across
// tag boundaries. Adjacent text nodes left behind by earlier removals
// are merged first so a run split across two nodes collapses the same
// way it would on a second pass.
func (c *Cleaner) collapseWhitespace(root *html.Node) PhaseStat {
	phase := PhaseStat{Name: "whitespace"}
	mergeAdjacentText(root)
	walk(root, func(n *html.Node) {
		if n.Type != html.TextNode {
			return
		}
		if collapsed := wsRunRE.ReplaceAllString(n.Data, " "); collapsed != n.Data {
			n.Data = collapsed
		}
	})
	return phase
}

// mergeAdjacentText joins consecutive sibling text nodes in place.
func mergeAdjacentText(root *html.Node) {
	walk(root, func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
				c.Data += next.Data
				n.RemoveChild(next)
				continue
			}
			c = next
		}
	})
}
