package blocks

import (
	"fmt"
	"strings"

	"github.com/radixwiki/wiki/src/parsing"
)

const (
	MaxRecentPagesLimit = 50
	MaxRSSLimit         = 20
)

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid page content: " + strings.Join(e.Problems, "; ")
}

// Validate checks the structural rules of a document: ids present and
// unique (columns included), containers holding only atomic blocks, every
// columns block having a column, and at most one infobox per page.
func Validate(content []Block) error {
	var problems []string
	seen := map[string]bool{}
	checkID := func(id, what string) {
		switch {
		case id == "":
			problems = append(problems, fmt.Sprintf("%s has no id", what))
		case seen[id]:
			problems = append(problems, fmt.Sprintf("%s has duplicate id %s", what, id))
		}
		seen[id] = true
	}

	Walk(content, func(b Block, p Path) {
		what := fmt.Sprintf("block %s", p)
		checkID(b.ID, what)
		if b.Data == nil {
			problems = append(problems, fmt.Sprintf("%s has no content", what))
			return
		}
		if u, ok := b.Data.(Unknown); ok && u.Malformed() {
			problems = append(problems, fmt.Sprintf("%s has unreadable %s data", what, u.TypeName))
		}
		if p.IsNested() && b.IsContainer() {
			problems = append(problems, fmt.Sprintf("%s: a %s block cannot be placed inside another block", what, b.Type()))
		}
		if cols, ok := b.Data.(Columns); ok {
			if len(cols.Columns) == 0 {
				problems = append(problems, fmt.Sprintf("%s: columns need at least one column", what))
			}
			for i, col := range cols.Columns {
				checkID(col.ID, fmt.Sprintf("column %d of %s", i, what))
			}
		}
	})

	if n := CountInfoboxes(content); n > 1 {
		problems = append(problems, fmt.Sprintf("a page can have only one infobox, found %d", n))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Clean returns a copy of content that is safe to store: content HTML is
// sanitized, links that aren't http(s) are cleared, and numeric settings are
// clamped to their allowed ranges. Table rows are normalized.
func Clean(content []Block) []Block {
	return mapBlocks(content, func(b Block) Block {
		switch data := b.Data.(type) {
		case Content:
			data.Text = parsing.SanitizeHTML(data.Text)
			b.Data = data
		case Media:
			data.URL = cleanURL(data.URL)
			if data.Kind != MediaVideo && data.Kind != MediaEmbed {
				data.Kind = MediaImage
			}
			b.Data = data
		case Callout:
			if !validCallout(data.Variant) {
				data.Variant = CalloutInfo
			}
			b.Data = data
		case Table:
			b.Data = data.Normalize()
		case TableOfContents:
			data.MaxDepth = clampOr(data.MaxDepth, 1, 6, DefaultTOCDepth)
			b.Data = data
		case RecentPages:
			data.TagPath = strings.Trim(strings.TrimSpace(data.TagPath), "/")
			data.Limit = clampOr(data.Limit, 1, MaxRecentPagesLimit, DefaultRecentPagesLimit)
			b.Data = data
		case PageList:
			ids := make([]string, 0, len(data.PageIDs))
			for _, id := range data.PageIDs {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			data.PageIDs = ids
			b.Data = data
		case AssetPrice:
			data.ResourceAddress = strings.TrimSpace(data.ResourceAddress)
			b.Data = data
		case Infobox:
			data.Image = cleanURL(data.Image)
			b.Data = data
		case RSSFeed:
			data.URL = cleanURL(data.URL)
			data.Limit = clampOr(data.Limit, 1, MaxRSSLimit, DefaultRSSLimit)
			b.Data = data
		}
		return b
	})
}

func validCallout(v CalloutVariant) bool {
	for _, known := range CalloutVariants {
		if v == known {
			return true
		}
	}
	return false
}

func cleanURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || !parsing.SafeURL(u) || strings.HasPrefix(strings.ToLower(u), "mailto:") {
		return ""
	}
	return u
}

func clampOr(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	return max(lo, min(v, hi))
}
