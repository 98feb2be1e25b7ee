package blocks

import "github.com/radixwiki/wiki/src/parsing"

// Headings collects the headings of every content block in document order,
// including blocks inside columns and infoboxes, down to maxDepth (1-6).
// Anchors are unique across the whole document and match HeadingAnchors.
func Headings(content []Block, maxDepth int) []parsing.Heading {
	if maxDepth <= 0 {
		maxDepth = DefaultTOCDepth
	}
	var result []parsing.Heading
	for _, h := range allHeadings(content) {
		if h.Level <= maxDepth {
			result = append(result, h.Heading)
		}
	}
	return result
}

// HeadingAnchors maps each content block id to the anchors of its headings,
// for parsing.SetHeadingAnchors when the block is rendered.
func HeadingAnchors(content []Block) map[string][]string {
	result := map[string][]string{}
	for _, h := range allHeadings(content) {
		result[h.blockID] = append(result[h.blockID], h.Anchor)
	}
	return result
}

type blockHeading struct {
	parsing.Heading
	blockID string
}

func allHeadings(content []Block) []blockHeading {
	var headings []parsing.Heading
	var owners []string
	Walk(content, func(b Block, _ Path) {
		c, ok := b.Data.(Content)
		if !ok {
			return
		}
		for _, h := range parsing.ExtractHeadings(c.Text) {
			headings = append(headings, h)
			owners = append(owners, b.ID)
		}
	})

	unique := parsing.UniqueAnchors(headings)
	result := make([]blockHeading, len(unique))
	for i, h := range unique {
		result[i] = blockHeading{Heading: h, blockID: owners[i]}
	}
	return result
}
