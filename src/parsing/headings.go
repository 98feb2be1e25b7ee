package parsing

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Heading struct {
	Level  int
	Text   string
	Anchor string
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// ExtractHeadings lists the h1-h6 elements of an HTML fragment in document
// order. The anchor is the heading's id, or the slug of its text.
func ExtractHeadings(s string) []Heading {
	nodes, err := html.ParseFragment(strings.NewReader(s), contextNode)
	if err != nil {
		return nil
	}

	var result []Heading
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level, ok := headingLevels[n.DataAtom]; ok {
				text := collapseSpace(textContent(n))
				if text != "" {
					result = append(result, Heading{
						Level:  level,
						Text:   text,
						Anchor: headingAnchor(n, text),
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return result
}

// AddHeadingAnchors sets the id of every heading to the anchor that
// ExtractHeadings reports for it, made unique within the fragment.
func AddHeadingAnchors(s string) string {
	headings := UniqueAnchors(ExtractHeadings(s))
	anchors := make([]string, len(headings))
	for i, h := range headings {
		anchors[i] = h.Anchor
	}
	return SetHeadingAnchors(s, anchors)
}

// SetHeadingAnchors assigns anchors, in order, as the ids of the non-empty
// headings of s. Headings beyond the end of anchors are left alone.
func SetHeadingAnchors(s string, anchors []string) string {
	if len(anchors) == 0 {
		return s
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), contextNode)
	if err != nil {
		return s
	}

	next := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := headingLevels[n.DataAtom]; ok {
				if next < len(anchors) && collapseSpace(textContent(n)) != "" {
					setAttr(n, "id", anchors[next])
					next++
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var b strings.Builder
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&b, n); err != nil {
			return s
		}
	}
	return b.String()
}

// Slugify lowercases text and joins its letters and digits with dashes.
func Slugify(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		} else {
			dash = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}

// UniqueAnchors suffixes repeated anchors with -2, -3, ... in order.
func UniqueAnchors(headings []Heading) []Heading {
	seen := map[string]int{}
	result := make([]Heading, len(headings))
	for i, h := range headings {
		seen[h.Anchor]++
		if n := seen[h.Anchor]; n > 1 {
			h.Anchor = h.Anchor + "-" + strconv.Itoa(n)
		}
		result[i] = h
	}
	return result
}

func headingAnchor(n *html.Node, text string) string {
	if id := getAttr(n, "id"); id != "" {
		return id
	}
	return Slugify(text)
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
