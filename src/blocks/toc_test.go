package blocks

import (
	"testing"

	"github.com/radixwiki/wiki/src/parsing"
	"github.com/stretchr/testify/assert"
)

func TestHeadings(t *testing.T) {
	content := []Block{
		textBlock("a", "<h1>Radix</h1><p>intro</p>"),
		{ID: "toc", Data: TableOfContents{MaxDepth: 2}},
		{ID: "cols", Data: Columns{Columns: []Column{
			{ID: "c1", Blocks: []Block{textBlock("n1", "<h2>Left side</h2><h4>Too deep</h4>")}},
			{ID: "c2", Blocks: []Block{textBlock("n2", "<h2>Right side</h2>")}},
		}}},
		{ID: "q", Data: Quote{Text: "<h2>not html</h2>"}},
		textBlock("b", "<h3>Details</h3>"),
	}

	assert.Equal(t, []parsing.Heading{
		{Level: 1, Text: "Radix", Anchor: "radix"},
		{Level: 2, Text: "Left side", Anchor: "left-side"},
		{Level: 2, Text: "Right side", Anchor: "right-side"},
	}, Headings(content, 2))

	all := Headings(content, 6)
	assert.Len(t, all, 5)
	assert.Len(t, Headings(content, 0), 4)
}

func TestHeadingAnchorsAreUniqueAcrossBlocks(t *testing.T) {
	content := []Block{
		textBlock("a", "<h2>Setup</h2>"),
		{ID: "cols", Data: Columns{Columns: []Column{
			{ID: "c1", Blocks: []Block{textBlock("n1", "<h2>Setup</h2><h5>Setup</h5>")}},
		}}},
		textBlock("b", "<h2>Other</h2>"),
	}

	assert.Equal(t, map[string][]string{
		"a":  {"setup"},
		"n1": {"setup-2", "setup-3"},
		"b":  {"other"},
	}, HeadingAnchors(content))

	headings := Headings(content, 2)
	assert.Equal(t, "setup-2", headings[1].Anchor)
	assert.Equal(t, "other", headings[2].Anchor)
}
