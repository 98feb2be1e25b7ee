// Package parsing turns user input into safe HTML and back: markdown import,
// the HTML allowlist, heading anchors, code highlighting and markdown export.
package parsing

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/util"
)

// Converts markdown typed into a content block. The output still goes
// through SanitizeHTML before it is stored.
var ContentMarkdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlightExtension,
	),
)

var highlightExtension = highlighting.NewHighlighting(
	highlighting.WithFormatOptions(ChromaOptions...),
	highlighting.WithWrapperRenderer(func(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
		if entering {
			w.WriteString(`<pre class="wiki-code">`)
		} else {
			w.WriteString(`</pre>`)
		}
	}),
)

// MarkdownToHTML converts and sanitizes markdown source.
func MarkdownToHTML(source string) string {
	var buf bytes.Buffer
	if err := ContentMarkdown.Convert([]byte(source), &buf); err != nil {
		// goldmark only fails when the writer does, and bytes.Buffer doesn't
		panic(err)
	}
	return SanitizeHTML(buf.String())
}
