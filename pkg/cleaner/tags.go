package cleaner

// voidTags cannot contain children and are never considered empty.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// officeTags are Word/Office artifacts deleted together with their
// content. The style entry covers raw CSS blocks Word pastes inline.
var officeTags = map[string]bool{
	"o:p":         true,
	"v:shapetype": true,
	"v:shape":     true,
	"v:imagedata": true,
	"xml":         true,
	"style":       true,
}

// vendorAttrPrefixes mark Office-generated attributes (mso-ansi-language,
// o:gfxdata, ...). Matched case-insensitively against lowercased names.
var vendorAttrPrefixes = []string{"mso", "o:"}

// allowedTags is the Moodle-safe tag vocabulary. Elements outside it are
// unwrapped, not deleted, so their content survives. span and font stay
// in the set because heading inference reads font sizes from inline
// wrappers before the unwrapping pass removes them.
var allowedTags = map[string]bool{
	"p": true, "div": true, "span": true, "font": true, "br": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"strong": true, "em": true, "b": true, "i": true, "u": true, "s": true,
	"sub": true, "sup": true, "a": true, "img": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "caption": true, "colgroup": true, "col": true,
	"thead": true, "tbody": true, "tfoot": true, "tr": true, "th": true, "td": true,
	"blockquote": true, "pre": true, "code": true,
}

// globalAllowedAttrs applies to every tag. Empty on purpose: Moodle
// content should carry no generic attributes.
var globalAllowedAttrs = map[string]bool{}

// allowedAttrsByTag lists the attributes Moodle tolerates per tag.
var allowedAttrsByTag = map[string]map[string]bool{
	"a":     {"href": true, "title": true, "target": true, "rel": true},
	"img":   {"src": true, "alt": true, "title": true, "width": true, "height": true},
	"th":    {"colspan": true, "rowspan": true, "scope": true},
	"td":    {"colspan": true, "rowspan": true},
	"table": {"summary": true},
}

// headingCandidateTags are the block elements heading inference looks at.
var headingCandidateTags = map[string]bool{
	"p":   true,
	"div": true,
}

// stylingWrapperTags are inline wrappers whose style attribute stands in
// for the paragraph's own when Word styles the run instead of the block.
var stylingWrapperTags = map[string]bool{
	"span": true, "font": true,
	"b": true, "i": true, "strong": true, "em": true,
}
