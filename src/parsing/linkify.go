package parsing

import (
	"html/template"
	"strings"

	"mvdan.cc/xurls/v2"
)

var relaxedURLs = xurls.Relaxed()

// Linkify escapes plain text and turns the URLs in it into links. Newlines
// become <br>.
func Linkify(text string) template.HTML {
	var b strings.Builder
	last := 0
	for _, loc := range relaxedURLs.FindAllStringIndex(text, -1) {
		b.WriteString(escapeLines(text[last:loc[0]]))

		raw := text[loc[0]:loc[1]]
		href := raw
		if !strings.Contains(href, "://") && !strings.HasPrefix(href, "mailto:") {
			href = "https://" + href
		}
		if SafeURL(href) {
			b.WriteString(`<a href="`)
			b.WriteString(template.HTMLEscapeString(href))
			b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			b.WriteString(template.HTMLEscapeString(raw))
			b.WriteString(`</a>`)
		} else {
			b.WriteString(template.HTMLEscapeString(raw))
		}
		last = loc[1]
	}
	b.WriteString(escapeLines(text[last:]))
	return template.HTML(b.String())
}

func escapeLines(s string) string {
	return strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")
}
