package parsing

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var allowedTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Hr: true, atom.Div: true, atom.Span: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Strong: true, atom.B: true, atom.Em: true, atom.I: true, atom.U: true,
	atom.S: true, atom.Strike: true, atom.Del: true, atom.Mark: true, atom.Sub: true, atom.Sup: true,
	atom.A: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Blockquote: true, atom.Code: true, atom.Pre: true,
	atom.Table: true, atom.Thead: true, atom.Tbody: true, atom.Tr: true, atom.Th: true, atom.Td: true,
}

// Removed along with everything inside them. Other disallowed tags are
// unwrapped and keep their text.
var droppedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Noscript: true, atom.Template: true, atom.Svg: true,
	atom.Math: true, atom.Textarea: true, atom.Select: true, atom.Title: true,
	atom.Head: true, atom.Frame: true, atom.Frameset: true,
}

var allowedAttrs = map[string]bool{
	"class":  true,
	"href":   true,
	"target": true,
	"rel":    true,
	"id":     true,
}

var allowedSchemes = map[string]bool{
	"":       true,
	"http":   true,
	"https":  true,
	"mailto": true,
}

var contextNode = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

// SanitizeHTML keeps only allowlisted tags and the class, href, target, rel
// and id attributes. Event handlers, scripts and non-http links are removed.
func SanitizeHTML(s string) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), contextNode)
	if err != nil {
		return html.EscapeString(s)
	}

	var b strings.Builder
	for _, n := range nodes {
		writeSanitized(&b, n)
	}
	return b.String()
}

func writeSanitized(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		// comments, doctypes
		return
	}

	if droppedTags[n.DataAtom] {
		return
	}
	if !allowedTags[n.DataAtom] {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeSanitized(b, c)
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Data)
	hasTarget := false
	for _, attr := range sanitizeAttrs(n.Attr) {
		if attr.Key == "target" {
			hasTarget = true
		}
		if attr.Key == "rel" && hasTarget {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteByte('"')
	}
	if hasTarget {
		b.WriteString(` rel="noopener noreferrer"`)
	}
	b.WriteByte('>')

	if n.DataAtom == atom.Br || n.DataAtom == atom.Hr {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeSanitized(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Data)
	b.WriteByte('>')
}

func sanitizeAttrs(attrs []html.Attribute) []html.Attribute {
	var result []html.Attribute
	var rel *html.Attribute
	for _, attr := range attrs {
		if attr.Namespace != "" || !allowedAttrs[attr.Key] {
			continue
		}
		switch attr.Key {
		case "href":
			if !SafeURL(attr.Val) {
				continue
			}
		case "target":
			if attr.Val != "_blank" && attr.Val != "_self" {
				continue
			}
		case "rel":
			rel = &attr
			continue
		}
		result = append(result, attr)
	}
	// rel goes last so a preceding target can replace it
	if rel != nil {
		result = append(result, *rel)
	}
	return result
}

// SafeURL reports whether u is relative or uses http, https or mailto.
func SafeURL(u string) bool {
	u = strings.TrimSpace(u)
	for _, r := range u {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return allowedSchemes[strings.ToLower(parsed.Scheme)]
}
