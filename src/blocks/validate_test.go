package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content []Block
		problem string
	}{
		{
			name:    "duplicate ids",
			content: []Block{textBlock("a", ""), textBlock("a", "")},
			problem: "duplicate id a",
		},
		{
			name: "column id collides with block id",
			content: []Block{
				textBlock("a", ""),
				{ID: "cols", Data: Columns{Columns: []Column{{ID: "a"}}}},
			},
			problem: "duplicate id a",
		},
		{
			name:    "missing id",
			content: []Block{textBlock("", "")},
			problem: "has no id",
		},
		{
			name:    "no columns",
			content: []Block{{ID: "cols", Data: Columns{}}},
			problem: "at least one column",
		},
		{
			name: "nested container",
			content: []Block{{ID: "cols", Data: Columns{Columns: []Column{{ID: "c1", Blocks: []Block{
				{ID: "inner", Data: Infobox{}},
			}}}}}},
			problem: "cannot be placed inside another block",
		},
		{
			name: "two infoboxes",
			content: []Block{
				{ID: "i1", Data: Infobox{}},
				{ID: "i2", Data: Infobox{}},
			},
			problem: "only one infobox",
		},
		{
			name:    "missing payload",
			content: []Block{{ID: "x"}},
			problem: "has no content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.content)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tt.problem)
		})
	}

	t.Run("valid page", func(t *testing.T) {
		content := []Block{
			textBlock("a", "<h2>Hi</h2>"),
			{ID: "ib", Data: Infobox{Blocks: []Block{textBlock("b", "")}}},
			{ID: "cols", Data: Columns{Columns: []Column{{ID: "c1", Blocks: []Block{textBlock("c", "")}}}}},
			{ID: "legacy", Data: Unknown{TypeName: "carousel", Raw: []byte(`{}`)}},
		}
		assert.NoError(t, Validate(content))
	})
}

func TestClean(t *testing.T) {
	content := []Block{
		textBlock("a", `<p onclick="x()">hi</p><script>bad()</script>`),
		{ID: "m", Data: Media{URL: "javascript:alert(1)", Kind: "gif"}},
		{ID: "c", Data: Callout{Variant: "rainbow"}},
		{ID: "r", Data: RecentPages{TagPath: " /contents/tech/ ", Limit: 1000}},
		{ID: "toc", Data: TableOfContents{MaxDepth: 0}},
		{ID: "cols", Data: Columns{Columns: []Column{{ID: "c1", Blocks: []Block{
			textBlock("n", `<img src=x onerror=alert(1)>ok`),
			{ID: "t", Data: Table{Rows: [][]string{{"a", "b"}, {"c"}}}},
		}}}}},
		{ID: "feed", Data: RSSFeed{URL: "https://feeds.example.com/radix"}},
	}
	cleaned := Clean(content)

	assert.Equal(t, "<p>hi</p>", cleaned[0].Data.(Content).Text)
	assert.Equal(t, Media{Kind: MediaImage}, cleaned[1].Data)
	assert.Equal(t, CalloutInfo, cleaned[2].Data.(Callout).Variant)
	assert.Equal(t, RecentPages{TagPath: "contents/tech", Limit: MaxRecentPagesLimit}, cleaned[3].Data)
	assert.Equal(t, DefaultTOCDepth, cleaned[4].Data.(TableOfContents).MaxDepth)

	col := cleaned[5].Data.(Columns).Columns[0]
	assert.Equal(t, "ok", col.Blocks[0].Data.(Content).Text)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", ""}}, col.Blocks[1].Data.(Table).Rows)

	assert.Equal(t, RSSFeed{URL: "https://feeds.example.com/radix", Limit: DefaultRSSLimit}, cleaned[6].Data)

	// input untouched
	assert.Contains(t, content[0].Data.(Content).Text, "script")
}
