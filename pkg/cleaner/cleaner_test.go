package cleaner

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		c := New(nil)
		if c == nil {
			t.Fatal("expected non-nil cleaner")
		}
		if c.config == nil {
			t.Fatal("expected non-nil config")
		}
		if !c.config.RemoveComments {
			t.Error("expected RemoveComments to be true by default")
		}
	})

	t.Run("custom config is used", func(t *testing.T) {
		cfg := &Config{RemoveComments: false, UnwrapSpans: true}
		c := New(cfg)
		if c.config.RemoveComments {
			t.Error("expected RemoveComments to be false")
		}
		if !c.config.UnwrapSpans {
			t.Error("expected UnwrapSpans to be true")
		}
	})
}

func TestName(t *testing.T) {
	c := New(nil)
	if c.Name() != "moodleclean" {
		t.Errorf("expected name 'moodleclean', got '%s'", c.Name())
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		config   *Config
		contains []string
		excludes []string
	}{
		{
			name:     "removes comments",
			html:     `<!-- generated by Word --><p>Hello</p><!-- trailing -->`,
			config:   &Config{RemoveComments: true},
			contains: []string{"Hello"},
			excludes: []string{"<!--", "generated"},
		},
		{
			name:     "keeps comments when disabled",
			html:     `<!-- note --><p>Hello</p>`,
			config:   &Config{},
			contains: []string{"<!-- note -->", "Hello"},
		},
		{
			name:     "removes office tags with content",
			html:     `<p>Hello<o:p></o:p></p><xml><w:data>junk</w:data></xml>`,
			config:   &Config{RemoveOfficeMarkup: true},
			contains: []string{"Hello"},
			excludes: []string{"o:p", "xml", "junk"},
		},
		{
			name:     "removes style blocks with content",
			html:     `<style>p { mso-style-name: Normal; }</style><p>Hello</p>`,
			config:   &Config{RemoveOfficeMarkup: true},
			contains: []string{"Hello"},
			excludes: []string{"mso-style-name", "<style>"},
		},
		{
			name:     "removes vendor-prefixed attributes",
			html:     `<p mso-fareast-language="EN-US" o:gfxdata="abc">Hello</p>`,
			config:   &Config{RemoveOfficeMarkup: true},
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"mso-fareast-language", "o:gfxdata"},
		},
		{
			name:     "unwraps disallowed tags keeping content",
			html:     `<article><section><p>Kept text</p></section></article>`,
			config:   &Config{EnforceTagAllowlist: true},
			contains: []string{"<p>Kept text</p>"},
			excludes: []string{"<article>", "<section>"},
		},
		{
			name:     "strips all styles by default mode",
			html:     `<p style="color: red; margin: 0">Hello</p>`,
			config:   &Config{},
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"style="},
		},
		{
			name:     "alignment mode keeps valid text-align only",
			html:     `<p style="text-align: CENTER; color: red">Hello</p>`,
			config:   &Config{StyleFilter: StyleKeepAlignment},
			contains: []string{`style="text-align: center"`, "Hello"},
			excludes: []string{"color"},
		},
		{
			name:     "alignment mode drops style without valid alignment",
			html:     `<p style="text-align: middle">Hello</p><p style="color: red">World</p>`,
			config:   &Config{StyleFilter: StyleKeepAlignment},
			contains: []string{"<p>Hello</p>", "<p>World</p>"},
			excludes: []string{"style="},
		},
		{
			name:     "attribute allowlist keeps anchor attributes",
			html:     `<a href="https://example.com" title="t" target="_blank" rel="noopener" onclick="x()">link</a>`,
			config:   &Config{EnforceAttributeAllowlist: true},
			contains: []string{`href="https://example.com"`, `title="t"`, `target="_blank"`, `rel="noopener"`},
			excludes: []string{"onclick"},
		},
		{
			name:     "attribute allowlist keeps image attributes",
			html:     `<img src="a.png" alt="diagram" width="10" height="20" data-id="7" loading="lazy">`,
			config:   &Config{EnforceAttributeAllowlist: true},
			contains: []string{`src="a.png"`, `alt="diagram"`, `width="10"`, `height="20"`},
			excludes: []string{"data-id", "loading"},
		},
		{
			name:     "attribute allowlist keeps table cell attributes",
			html:     `<table summary="s" border="1"><tr><th colspan="2" scope="col" bgcolor="red">h</th><td rowspan="3" align="left">d</td></tr></table>`,
			config:   &Config{EnforceAttributeAllowlist: true},
			contains: []string{`summary="s"`, `colspan="2"`, `scope="col"`, `rowspan="3"`},
			excludes: []string{"border", "bgcolor", "align="},
		},
		{
			name:     "removes classes when configured",
			html:     `<p class="MsoNormal">Hello</p>`,
			config:   &Config{RemoveClasses: true},
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"class="},
		},
		{
			name:     "removes ids when configured",
			html:     `<p id="para1">Hello</p>`,
			config:   &Config{RemoveIDs: true},
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"id="},
		},
		{
			name:     "converts b and i regardless of toggle",
			html:     `<p><b>bold</b> and <i>italic</i></p>`,
			config:   &Config{ConvertBoldItalic: false},
			contains: []string{"<strong>bold</strong>", "<em>italic</em>"},
			excludes: []string{"<b>", "<i>"},
		},
		{
			name:     "unwraps spans",
			html:     `<p><span>Hello</span> <span><strong>World</strong></span></p>`,
			config:   &Config{UnwrapSpans: true},
			contains: []string{"Hello", "<strong>World</strong>"},
			excludes: []string{"<span>"},
		},
		{
			name:     "unwraps legacy font wrappers",
			html:     `<p><font color="red" size="5">Hello</font></p>`,
			config:   &Config{UnwrapSpans: true},
			contains: []string{"<p>Hello</p>"},
			excludes: []string{"<font"},
		},
		{
			name:     "removes empty tags",
			html:     `<p></p><p>Content</p><div>   </div>`,
			config:   &Config{RemoveEmptyTags: true},
			contains: []string{"<p>Content</p>"},
			excludes: []string{"<p></p>", "<div>"},
		},
		{
			name:     "keeps void tags during pruning",
			html:     `<p>Text</p><hr><img src="a.png">`,
			config:   &Config{RemoveEmptyTags: true},
			contains: []string{"<p>Text</p>", "<hr/>", "<img"},
		},
		{
			name:     "collapses whitespace in text nodes",
			html:     "<p>a \t\r\n  b</p>",
			config:   &Config{CollapseWhitespace: true},
			contains: []string{"<p>a b</p>"},
		},
		{
			name:     "removes elements by selector",
			html:     `<script>var x = 1;</script><p>Hello</p>`,
			config:   &Config{RemoveSelectors: []string{"script"}},
			contains: []string{"Hello"},
			excludes: []string{"script", "var x"},
		},
		{
			name:     "keep selectors override remove selectors",
			html:     `<div class="keep">Keep me</div><div class="other">Drop me</div>`,
			config:   &Config{RemoveSelectors: []string{"div"}, KeepSelectors: []string{".keep"}},
			contains: []string{"Keep me"},
			excludes: []string{"Drop me"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.config)
			result, err := c.Clean(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected output to contain %q, got: %s", s, result)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("expected output to not contain %q, got: %s", s, result)
				}
			}
		})
	}
}

func TestCleanRoundTrip(t *testing.T) {
	// The canonical Word paste: a short styled paragraph becomes a
	// heading with every decoration stripped.
	c := New(DefaultConfig())
	result, err := c.Clean(`<p style="font-size:24px; color:red;" class="x">Section Title</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "<h3>Section Title</h3>" {
		t.Errorf("expected <h3>Section Title</h3>, got: %s", result)
	}
}

func TestCleanOfficeScenario(t *testing.T) {
	c := New(DefaultConfig())
	html := `<p mso-style-alt="Body">Before <v:shape><v:imagedata src="wordml://x"></v:imagedata></v:shape>after</p>`
	result, err := c.Clean(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range []string{"mso-style-alt", "v:shape", "v:imagedata", "wordml"} {
		if strings.Contains(result, s) {
			t.Errorf("expected office markup %q to be removed, got: %s", s, result)
		}
	}
	if !strings.Contains(result, "Before ") || !strings.Contains(result, "after") {
		t.Errorf("expected sibling text to be preserved, got: %s", result)
	}
}

func TestEmptyPruningFixpoint(t *testing.T) {
	t.Run("nested placeholder removed entirely", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`<div><p><br></p></div>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "" {
			t.Errorf("expected empty output, got: %q", result)
		}
	})

	t.Run("paragraph with text and break survives", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`<p>Text<br></p>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "<p>Text<br/></p>" {
			t.Errorf("expected paragraph to survive intact, got: %q", result)
		}
	})

	t.Run("element with image child survives", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`<p><img src="a.png" alt="a"></p>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(result, "<img") {
			t.Errorf("expected image to survive, got: %q", result)
		}
	})
}

func TestWhitespaceSafety(t *testing.T) {
	c := New(DefaultConfig())
	result, err := c.Clean(`<p>a   b</p><p>c</p>`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "<p>a b</p><p>c</p>" {
		t.Errorf("expected block boundary to be preserved, got: %q", result)
	}
}

func TestIdempotence(t *testing.T) {
	html := `
		<div class="WordSection1">
			<p style="font-size:30px"><span style="mso-bidi-font-weight:bold">Course Outline</span></p>
			<p style="font-size:24px">Week   One</p>
			<p><b>Read</b> the <i>assigned</i> chapters.</p>
			<p><br></p>
			<ul><li>First</li><li>Second</li></ul>
			<table><tr><td colspan="2">cell</td></tr></table>
		</div>`

	c := New(DefaultConfig())
	once, err := c.Clean(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := c.Clean(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Errorf("expected cleaning to be idempotent\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestTagAllowlistClosure(t *testing.T) {
	// Every surviving tag must be in the allowed set, and unwrapping
	// must not lose text content.
	html := `<article><header><h1>Title</h1></header><main><p>Body <custom-el>text</custom-el></p></main></article>`
	c := New(DefaultConfig())
	result, err := c.Clean(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tag := range []string{"<article", "<header", "<main", "<custom-el"} {
		if strings.Contains(result, tag) {
			t.Errorf("expected disallowed tag %q to be unwrapped, got: %s", tag, result)
		}
	}
	for _, text := range []string{"Title", "Body", "text"} {
		if !strings.Contains(result, text) {
			t.Errorf("expected text %q to survive unwrapping, got: %s", text, result)
		}
	}
}

func TestCleanWithStats(t *testing.T) {
	t.Run("returns stats with input/output bytes", func(t *testing.T) {
		html := `<p style="color:red" class="x">Hello</p><o:p></o:p>`
		c := New(DefaultConfig())
		result := c.CleanWithStats(html)

		if result.Stats == nil {
			t.Fatal("expected stats to be non-nil")
		}
		if result.Stats.InputBytes != len(html) {
			t.Errorf("expected input bytes %d, got %d", len(html), result.Stats.InputBytes)
		}
		if result.Stats.OutputBytes != len(result.Content) {
			t.Errorf("expected output bytes %d, got %d", len(result.Content), result.Stats.OutputBytes)
		}
	})

	t.Run("tracks elements removed by tag", func(t *testing.T) {
		html := `<p>x<o:p></o:p><o:p></o:p></p>`
		c := New(&Config{RemoveOfficeMarkup: true})
		result := c.CleanWithStats(html)

		if result.Stats.ElementsRemoved["o:p"] != 2 {
			t.Errorf("expected 2 o:p removals, got %d", result.Stats.ElementsRemoved["o:p"])
		}
	})

	t.Run("tracks per-phase stats", func(t *testing.T) {
		html := `<!-- c --><p style="color:red"><span>x</span></p>`
		c := New(DefaultConfig())
		result := c.CleanWithStats(html)

		if phase := result.Stats.GetPhase("spans"); phase == nil || phase.ElementsUnwrapped != 1 {
			t.Error("expected spans phase to record 1 unwrap")
		}
		if phase := result.Stats.GetPhase("styles"); phase == nil || phase.AttributesRemoved != 1 {
			t.Error("expected styles phase to record 1 attribute removal")
		}
		if result.Stats.CommentsRemoved != 1 {
			t.Errorf("expected 1 comment removed, got %d", result.Stats.CommentsRemoved)
		}
		if phase := result.Stats.GetPhase("comments"); phase == nil || phase.ElementsRemoved != 1 {
			t.Error("expected comments phase to record 1 removal")
		}
	})

	t.Run("records headings inferred", func(t *testing.T) {
		c := New(DefaultConfig())
		result := c.CleanWithStats(`<p style="font-size:30px">Title</p>`)
		if result.Stats.HeadingsInferred != 1 {
			t.Errorf("expected 1 heading inferred, got %d", result.Stats.HeadingsInferred)
		}
	})

	t.Run("Stats() returns last run", func(t *testing.T) {
		c := New(DefaultConfig())
		_ = c.CleanWithStats(`<p>Hello</p>`)
		if c.Stats() == nil {
			t.Fatal("expected stats to be available")
		}
	})
}

func TestOptionalRenderings(t *testing.T) {
	t.Run("pretty copy emitted when configured", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.PrettyPrint = true
		c := New(cfg)
		result := c.CleanWithStats(`<div><p>a</p><p>b</p></div>`)

		if result.Pretty == "" {
			t.Fatal("expected pretty rendering to be set")
		}
		if !strings.Contains(result.Pretty, "\n") {
			t.Error("expected pretty rendering to be multi-line")
		}
	})

	t.Run("compact copy emitted when configured", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmitCompact = true
		c := New(cfg)
		result := c.CleanWithStats(`<p>a</p>`)

		if result.Compact == "" {
			t.Fatal("expected compact rendering to be set")
		}
	})

	t.Run("markdown copy emitted when configured", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.EmitMarkdown = true
		c := New(cfg)
		result := c.CleanWithStats(`<p style="font-size:30px">Title</p><p>Body <b>text</b></p>`)

		if !strings.Contains(result.Markdown, "## Title") {
			t.Errorf("expected markdown heading, got: %q", result.Markdown)
		}
		if !strings.Contains(result.Markdown, "**text**") {
			t.Errorf("expected markdown bold, got: %q", result.Markdown)
		}
	})

	t.Run("renderings absent by default", func(t *testing.T) {
		c := New(DefaultConfig())
		result := c.CleanWithStats(`<p>a</p>`)
		if result.Pretty != "" || result.Compact != "" || result.Markdown != "" {
			t.Error("expected optional renderings to be empty by default")
		}
	})
}

func TestGracefulDegradation(t *testing.T) {
	t.Run("unclosed tags are tolerated", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`<p>Unclosed paragraph<div>stray`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(result, "Unclosed paragraph") {
			t.Errorf("expected content to be preserved, got: %q", result)
		}
	})

	t.Run("stray close tag loses nothing", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`a</div>b`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "ab" {
			t.Errorf("expected both sides of the stray close tag, got: %q", result)
		}
	})

	t.Run("bare text passes through", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean(`just some text`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "just some text" {
			t.Errorf("expected bare text to pass through, got: %q", result)
		}
	})

	t.Run("empty input returns empty string", func(t *testing.T) {
		c := New(DefaultConfig())
		result, err := c.Clean("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != "" {
			t.Errorf("expected empty output, got: %q", result)
		}
	})
}

func BenchmarkClean(b *testing.B) {
	html := `
		<div class="WordSection1">
			<p class="MsoNormal" style="font-size:30px; mso-margin-top-alt:auto"><span style="mso-bidi-font-weight:bold">Course Outline</span><o:p></o:p></p>
			<p class="MsoNormal">This module covers the <b>fundamentals</b> of <i>course design</i>.</p>
			<p><br></p>
			<ul><li>Week one: introduction</li><li>Week two: practice</li></ul>
			<table border="1"><tr><th scope="col">Week</th><th scope="col">Topic</th></tr>
			<tr><td>1</td><td>Intro</td></tr></table>
			<!--[if gte mso 9]><xml><w:WordDocument></w:WordDocument></xml><![endif]-->
		</div>`

	c := New(DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Clean(html)
	}
}
