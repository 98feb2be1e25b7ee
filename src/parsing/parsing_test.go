package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	t.Run("headings and emphasis", func(t *testing.T) {
		html := MarkdownToHTML("## Staking\n\nSome **bold** text")
		assert.Contains(t, html, "<h2>Staking</h2>")
		assert.Contains(t, html, "<strong>bold</strong>")
	})
	t.Run("fenced code with language", func(t *testing.T) {
		html := MarkdownToHTML("```go\nfunc main() {\n\tfmt.Println(\"Hello, world!\")\n}\n```")
		assert.Equal(t, 1, strings.Count(html, "<pre"))
		assert.Contains(t, html, `class="wiki-code"`)
		assert.Contains(t, html, "Println")
	})
	t.Run("raw html is sanitized", func(t *testing.T) {
		html := MarkdownToHTML("hi <script>alert(1)</script>")
		assert.NotContains(t, html, "<script")
	})
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "<h2>Hi</h2>", "<h2>Hi</h2>"},
		{"script dropped", `<p>a<script>alert(1)</script>b</p>`, "<p>ab</p>"},
		{"event handler stripped", `<p onclick="evil()" class="lead">x</p>`, `<p class="lead">x</p>`},
		{"unknown tag unwrapped", `<p><font color="red">red</font></p>`, "<p>red</p>"},
		{"javascript href dropped", `<a href="javascript:alert(1)">x</a>`, "<a>x</a>"},
		{"obfuscated scheme dropped", "<a href=\"java\tscript:alert(1)\">x</a>", "<a>x</a>"},
		{"https href kept", `<a href="https://radixdlt.com" id="l">x</a>`, `<a href="https://radixdlt.com" id="l">x</a>`},
		{"relative href kept", `<a href="/wiki/p/contents/x">x</a>`, `<a href="/wiki/p/contents/x">x</a>`},
		{"target forces rel", `<a href="https://x.io" rel="opener" target="_blank">x</a>`, `<a href="https://x.io" target="_blank" rel="noopener noreferrer">x</a>`},
		{"bad target dropped", `<a href="/x" target="top">x</a>`, `<a href="/x">x</a>`},
		{"style attr dropped", `<span style="color:red">x</span>`, "<span>x</span>"},
		{"void elements", "a<br>b<hr>", "a<br>b<hr>"},
		{"text escaped", "1 &lt; 2", "1 &lt; 2"},
		{"comments dropped", "a<!-- hidden -->b", "ab"},
		{"img removed", `<img src="x" onerror="evil()">`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeHTML(tt.input))
		})
	}
}

func TestSafeURL(t *testing.T) {
	assert.True(t, SafeURL("https://ociswap.com"))
	assert.True(t, SafeURL("mailto:team@example.com"))
	assert.True(t, SafeURL("#heading"))
	assert.False(t, SafeURL("javascript:alert(1)"))
	assert.False(t, SafeURL("JavaScript:alert(1)"))
	assert.False(t, SafeURL("data:text/html;base64,xx"))
}

func TestHeadings(t *testing.T) {
	html := `<h1>Overview</h1><p>text</p><div><h3 id="custom">Deep  <em>dive</em></h3></div><h2></h2>`
	headings := ExtractHeadings(html)
	require.Len(t, headings, 2)
	assert.Equal(t, Heading{Level: 1, Text: "Overview", Anchor: "overview"}, headings[0])
	assert.Equal(t, Heading{Level: 3, Text: "Deep dive", Anchor: "custom"}, headings[1])

	anchored := AddHeadingAnchors(html)
	assert.Contains(t, anchored, `<h1 id="overview">Overview</h1>`)
	assert.Contains(t, anchored, `<h3 id="custom">`)

	repeated := AddHeadingAnchors(`<h2>FAQ</h2><h2>FAQ</h2>`)
	assert.Equal(t, `<h2 id="faq">FAQ</h2><h2 id="faq-2">FAQ</h2>`, repeated)

	assert.Equal(t, `<h2 id="x">A</h2><h2></h2><h3 id="y">B</h3><h4>C</h4>`,
		SetHeadingAnchors(`<h2>A</h2><h2></h2><h3 id="old">B</h3><h4>C</h4>`, []string{"x", "y"}))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "what-is-xrd", Slugify("What is XRD?"))
	assert.Equal(t, "über-uns", Slugify("  Über uns "))
	assert.Equal(t, "section", Slugify("!!!"))
}

func TestUniqueAnchors(t *testing.T) {
	headings := UniqueAnchors([]Heading{{Anchor: "faq"}, {Anchor: "faq"}, {Anchor: "intro"}, {Anchor: "faq"}})
	assert.Equal(t, "faq", headings[0].Anchor)
	assert.Equal(t, "faq-2", headings[1].Anchor)
	assert.Equal(t, "intro", headings[2].Anchor)
	assert.Equal(t, "faq-3", headings[3].Anchor)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Title Body text", PlainText("<h2>Title</h2><p>Body <b>text</b></p><script>x()</script>"))
}

func TestLinkify(t *testing.T) {
	out := string(Linkify("see radixdlt.com and <b>\nhttps://ociswap.com/x"))
	assert.Contains(t, out, `<a href="https://radixdlt.com" target="_blank" rel="noopener noreferrer">radixdlt.com</a>`)
	assert.Contains(t, out, `<a href="https://ociswap.com/x"`)
	assert.Contains(t, out, "&lt;b&gt;<br>")
}

func TestHighlightCode(t *testing.T) {
	out := string(HighlightCode("go", "package main"))
	assert.Contains(t, out, "package")
	assert.Contains(t, out, "class=")

	out = string(HighlightCode("no-such-language", "<tag>"))
	assert.Contains(t, out, "&lt;tag&gt;")
}

func TestToMarkdown(t *testing.T) {
	md, err := ToMarkdown(`<h2>Hi</h2><p>Some <strong>bold</strong> text</p>`)
	require.NoError(t, err)
	assert.Contains(t, md, "## Hi")
	assert.Contains(t, md, "**bold**")
}
