package render

import (
	"context"
	"errors"
	"html"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	pages []*models.PageSummary
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakePages) wait(ctx context.Context) error {
	f.calls.Add(1)
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakePages) RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if len(f.pages) > limit {
		return f.pages[:limit], f.err
	}
	return f.pages, f.err
}

func (f *fakePages) PagesByIDs(ctx context.Context, ids []string) ([]*models.PageSummary, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.pages, f.err
}

type fakePrices struct {
	quote *prices.Quote
	err   error
}

func (f fakePrices) Quote(ctx context.Context, address string) (*prices.Quote, error) {
	return f.quote, f.err
}

type fakeFeeds struct {
	items []feeds.Item
	err   error
}

func (f fakeFeeds) Fetch(ctx context.Context, url string, limit int) ([]feeds.Item, error) {
	return f.items, f.err
}

func samplePages() []*models.PageSummary {
	return []*models.PageSummary{
		{Title: "Staking guide", TagPath: "contents/tech", Slug: "staking-guide", Excerpt: "How staking works."},
		{Title: "Validators", TagPath: "contents", Slug: "validators"},
	}
}

func TestUnknownBlockNeverPanics(t *testing.T) {
	r := NewRenderer(Sources{})
	unknown := blocks.Block{ID: "u1", Data: blocks.Unknown{TypeName: "poll", Raw: []byte(`{"type":"poll"}`)}}
	empty := blocks.Block{ID: "u2"}

	for _, b := range []blocks.Block{unknown, empty} {
		view := string(r.Render(context.Background(), b, View, RenderOptions{}))
		assert.Contains(t, view, "Unsupported block type")

		edit := string(r.Render(context.Background(), b, Edit, RenderOptions{}))
		assert.Contains(t, edit, `value="remove:0"`)
		assert.NotContains(t, edit, "duplicate:")
		assert.NotContains(t, edit, "up:")
		assert.NotContains(t, edit, "insert:")
	}
	assert.Contains(t, string(r.Render(context.Background(), unknown, View, RenderOptions{})), "poll")
}

func TestUnreadableBlockShowsError(t *testing.T) {
	r := NewRenderer(Sources{})
	content, err := blocks.ParseDocument([]byte(`[{"id":"t","type":"table","rows":[[1,2]]}]`))
	require.NoError(t, err)

	view := string(r.Render(context.Background(), content[0], View, RenderOptions{}))
	assert.Contains(t, view, "This table block has settings that could not be read.")
	assert.NotContains(t, view, "Unsupported block type")

	edit := string(r.Render(context.Background(), content[0], Edit, RenderOptions{}))
	assert.Contains(t, edit, "could not be read. It can only be deleted.")
	assert.Contains(t, edit, `value="remove:0"`)
}

func TestContentAndTableOfContents(t *testing.T) {
	content := []blocks.Block{
		{ID: "toc", Data: blocks.TableOfContents{Title: "On this page", MaxDepth: 2}},
		{ID: "a", Data: blocks.Content{Text: `<h2>Setup</h2><p onclick="x()">Hi</p><script>alert(1)</script>`}},
		{ID: "cols", Data: blocks.Columns{Columns: []blocks.Column{
			{ID: "c1", Blocks: []blocks.Block{{ID: "n1", Data: blocks.Content{Text: "<h2>Setup</h2><h3>Deep</h3>"}}}},
		}}},
	}

	r := NewRenderer(Sources{})
	out := string(r.RenderDocument(context.Background(), content, View, nil))

	assert.Contains(t, out, "On this page")
	assert.Contains(t, out, `href="#setup"`)
	assert.Contains(t, out, `href="#setup-2"`)
	assert.NotContains(t, out, `href="#deep"`)
	assert.Contains(t, out, `<h2 id="setup">Setup</h2>`)
	assert.Contains(t, out, `<h2 id="setup-2">Setup</h2>`)
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "<script>")
}

func TestTableOfContentsWithoutHeadings(t *testing.T) {
	r := NewRenderer(Sources{})
	b, err := blocks.New(blocks.TypeTableOfContents)
	require.NoError(t, err)
	assert.Contains(t, string(r.Render(context.Background(), b, View, RenderOptions{})), "No headings yet.")
}

func TestStaticViews(t *testing.T) {
	r := NewRenderer(Sources{})
	ctx := context.Background()

	callout := string(r.Render(ctx, blocks.Block{ID: "c", Data: blocks.Callout{Variant: blocks.CalloutWarning, Title: "Careful", Text: "see radixdlt.com"}}, View, RenderOptions{}))
	assert.Contains(t, callout, "wiki-callout-warning")
	assert.Contains(t, callout, "Careful")
	assert.Contains(t, callout, `href="https://radixdlt.com"`)

	table := string(r.Render(ctx, blocks.Block{ID: "t", Data: blocks.Table{HasHeader: true, Rows: [][]string{{"Name", "Ticker"}, {"Radix"}}}}, View, RenderOptions{}))
	assert.Contains(t, table, "<th>Name</th>")
	assert.Contains(t, table, "<td>Radix</td><td></td>")

	media := string(r.Render(ctx, blocks.Block{ID: "m", Data: blocks.Media{Kind: blocks.MediaImage, URL: "javascript:alert(1)"}}, View, RenderOptions{}))
	assert.Contains(t, media, "No media selected.")

	code := string(r.Render(ctx, blocks.Block{ID: "k", Data: blocks.Code{Language: "go", Code: "package main"}}, View, RenderOptions{}))
	assert.Contains(t, code, `data-language="go"`)
	assert.Contains(t, code, "main")
}

func TestLiveBlocks(t *testing.T) {
	ctx := context.Background()

	t.Run("recent pages", func(t *testing.T) {
		r := NewRenderer(Sources{Pages: &fakePages{pages: samplePages()}})
		b := blocks.Block{ID: "r", Data: blocks.RecentPages{Title: "Latest", TagPath: "contents", Limit: 5}}
		out := string(r.Render(ctx, b, View, RenderOptions{}))
		assert.Contains(t, out, "Latest")
		assert.Contains(t, out, "/wiki/p/contents/tech/staking-guide")
		assert.Contains(t, out, "How staking works.")
		assert.Contains(t, out, "/wiki/c/contents")
	})
	t.Run("recent pages empty", func(t *testing.T) {
		r := NewRenderer(Sources{Pages: &fakePages{}})
		out := string(r.Render(ctx, blocks.Block{ID: "r", Data: blocks.RecentPages{Limit: 5}}, View, RenderOptions{}))
		assert.Contains(t, out, "No pages yet.")
	})
	t.Run("page list error", func(t *testing.T) {
		r := NewRenderer(Sources{Pages: &fakePages{err: errors.New("db down")}})
		out := string(r.Render(ctx, blocks.Block{ID: "p", Data: blocks.PageList{PageIDs: []string{"x"}}}, View, RenderOptions{}))
		assert.Contains(t, out, "Could not load pages")
		assert.NotContains(t, out, "db down")
	})
	t.Run("page list without ids skips the source", func(t *testing.T) {
		src := &fakePages{}
		r := NewRenderer(Sources{Pages: src})
		out := string(r.Render(ctx, blocks.Block{ID: "p", Data: blocks.PageList{}}, View, RenderOptions{}))
		assert.Contains(t, out, "No pages selected.")
		assert.Equal(t, int32(0), src.calls.Load())
	})
	t.Run("timeout", func(t *testing.T) {
		r := NewRenderer(Sources{Pages: &fakePages{pages: samplePages(), delay: time.Second}})
		r.LiveTimeout = 20 * time.Millisecond
		out := string(r.Render(ctx, blocks.Block{ID: "r", Data: blocks.RecentPages{Limit: 5}}, View, RenderOptions{}))
		assert.Contains(t, out, "Timed out while loading pages")
	})
	t.Run("price", func(t *testing.T) {
		quote := &prices.Quote{ResourceAddress: "resource_rdx1abc", Symbol: "XRD", USD: 0.0123, USD24hAgo: 0.01}
		r := NewRenderer(Sources{Prices: fakePrices{quote: quote}})
		out := string(r.Render(ctx, blocks.Block{ID: "a", Data: blocks.AssetPrice{ResourceAddress: "resource_rdx1abc"}}, View, RenderOptions{}))
		assert.Contains(t, out, "XRD")
		assert.Contains(t, out, "$0.01230")
		assert.Contains(t, html.UnescapeString(out), "+23.00%")
		assert.Contains(t, out, "/api/prices/resource_rdx1abc/live")
	})
	t.Run("price unavailable", func(t *testing.T) {
		r := NewRenderer(Sources{Prices: fakePrices{err: prices.ErrUnavailable}})
		out := string(r.Render(ctx, blocks.Block{ID: "a", Data: blocks.AssetPrice{ResourceAddress: "resource_rdx1abc", Label: "Radix"}}, View, RenderOptions{}))
		assert.Contains(t, out, "Radix")
		assert.Contains(t, out, "Price unavailable")
	})
	t.Run("no price source", func(t *testing.T) {
		r := NewRenderer(Sources{})
		out := string(r.Render(ctx, blocks.Block{ID: "a", Data: blocks.AssetPrice{ResourceAddress: "resource_rdx1abc"}}, View, RenderOptions{}))
		assert.Contains(t, out, "Price unavailable")
	})
	t.Run("feed", func(t *testing.T) {
		items := []feeds.Item{{Title: "Mainnet upgrade", Link: "https://example.com/a", Source: "Radix Blog", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}}
		r := NewRenderer(Sources{Feeds: fakeFeeds{items: items}})
		out := string(r.Render(ctx, blocks.Block{ID: "f", Data: blocks.RSSFeed{URL: "https://feeds.example.com", Limit: 5}}, View, RenderOptions{}))
		assert.Contains(t, out, "Mainnet upgrade")
		assert.Contains(t, out, "Mar 1, 2024")
	})
	t.Run("feed unavailable", func(t *testing.T) {
		r := NewRenderer(Sources{Feeds: fakeFeeds{err: feeds.ErrUnavailable}})
		out := string(r.Render(ctx, blocks.Block{ID: "f", Data: blocks.RSSFeed{URL: "https://feeds.example.com", Limit: 5}}, View, RenderOptions{}))
		assert.Contains(t, out, "Feed unavailable")
	})
}

func TestRenderDocumentFetchesLiveBlocksOnce(t *testing.T) {
	src := &fakePages{pages: samplePages(), delay: 30 * time.Millisecond}
	r := NewRenderer(Sources{Pages: src})
	content := []blocks.Block{
		{ID: "r1", Data: blocks.RecentPages{Limit: 5}},
		{ID: "cols", Data: blocks.Columns{Columns: []blocks.Column{
			{ID: "c1", Blocks: []blocks.Block{{ID: "r2", Data: blocks.RecentPages{Limit: 1}}}},
			{ID: "c2", Blocks: []blocks.Block{{ID: "p1", Data: blocks.PageList{PageIDs: []string{"a"}}}}},
		}}},
	}

	start := time.Now()
	out := string(r.RenderDocument(context.Background(), content, View, nil))
	elapsed := time.Since(start)

	assert.Equal(t, int32(3), src.calls.Load())
	assert.Less(t, elapsed, 80*time.Millisecond, "live blocks should load concurrently")
	assert.Equal(t, 3, strings.Count(out, "Staking guide"))
}

func TestEditMode(t *testing.T) {
	content := []blocks.Block{
		{ID: "a", Data: blocks.Content{Text: "<p>Hello</p>"}},
		{ID: "cols", Data: blocks.Columns{Columns: []blocks.Column{
			{ID: "c1", Blocks: []blocks.Block{{ID: "n1", Data: blocks.Quote{Text: "q"}}}},
			{ID: "c2"},
		}}},
		{ID: "t", Data: blocks.NewTable(2, 2)},
	}
	src := &fakePages{}
	r := NewRenderer(Sources{Pages: src})
	out := string(r.RenderDocument(context.Background(), content, Edit, blocks.Path{1, 0, 0}))

	assert.Contains(t, out, `name="blk.0.text"`)
	assert.Contains(t, out, `name="blk.1.0.0.text"`)
	assert.Contains(t, out, `name="blk.2.cell.1.1"`)
	assert.Contains(t, out, `value="up:0"`)
	assert.Contains(t, out, `value="down:2"`)
	assert.Contains(t, out, `value="insert:1:content"`)
	assert.Contains(t, out, `value="insert:1.1.0:quote"`)
	assert.NotContains(t, out, `value="insert:1.1.0:columns"`)
	assert.Contains(t, out, `value="insert:3:columns"`)
	assert.Contains(t, out, `value="columns-remove:1:1"`)
	assert.Contains(t, out, `value="table-add-row:2"`)
	assert.Contains(t, out, `id="block-n1" data-path="1.0.0"`)
	assert.Contains(t, out, `edit-block selected" id="block-n1"`)
	assert.Equal(t, int32(0), src.calls.Load(), "edit mode never fetches live data")
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0", FormatUSD(0))
	assert.Equal(t, "$1,234,567.89", FormatUSD(1234567.891))
	assert.Equal(t, "$12.50", FormatUSD(12.5))
	assert.Equal(t, "$0.04210", FormatUSD(0.0421))
	assert.Equal(t, "-12.34%", FormatChange(-12.344))
}

func TestRenderPageSplitsInfobox(t *testing.T) {
	content := []blocks.Block{
		{ID: "a", Data: blocks.Content{Text: "<p>Alpha</p>"}},
		{ID: "i1", Data: blocks.Infobox{Title: "First box"}},
		{ID: "i2", Data: blocks.Infobox{Title: "Second box"}},
	}

	r := NewRenderer(Sources{})
	main, infobox := r.RenderPage(context.Background(), content)

	assert.Contains(t, string(main), "Alpha")
	assert.NotContains(t, string(main), "First box")
	assert.NotContains(t, string(main), "Second box")
	assert.Contains(t, string(infobox), "First box")
	assert.NotContains(t, string(infobox), "Second box")

	main, infobox = r.RenderPage(context.Background(), content[:1])
	assert.Contains(t, string(main), "Alpha")
	assert.Empty(t, infobox)
}

func TestBlockTemplatesLoad(t *testing.T) {
	tmpl, err := loadBlockTemplates()
	require.NoError(t, err)

	for _, e := range blocks.Entries() {
		assert.NotNil(t, tmpl.Lookup("view_"+string(e.Type)), "missing view template for %s", e.Type)
		assert.NotNil(t, tmpl.Lookup("edit_"+string(e.Type)), "missing edit template for %s", e.Type)
	}
	for _, name := range []string{"view_wrapper", "edit_wrapper", "edit_insert_menu", "view_unknown", "edit_unknown", "view_failed"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestAssetPriceLabelFallsBackToSymbol(t *testing.T) {
	quote := &prices.Quote{ResourceAddress: "resource_rdx1abc", Symbol: "OCI", USD: 1}
	r := NewRenderer(Sources{Prices: fakePrices{quote: quote}})

	out := string(r.Render(context.Background(), blocks.Block{ID: "a", Data: blocks.AssetPrice{ResourceAddress: "resource_rdx1abc"}}, View, RenderOptions{}))
	assert.Contains(t, out, "OCI")

	out = string(r.Render(context.Background(), blocks.Block{ID: "a", Data: blocks.AssetPrice{ResourceAddress: "resource_rdx1abc", Label: "Ociswap"}}, View, RenderOptions{}))
	assert.Contains(t, out, "Ociswap")
}

type panickingFeeds struct{}

func (panickingFeeds) Fetch(ctx context.Context, url string, limit int) ([]feeds.Item, error) {
	panic("feed exploded")
}

func TestRenderRecoversFromPanics(t *testing.T) {
	r := NewRenderer(Sources{Feeds: panickingFeeds{}})
	b := blocks.Block{ID: "f", Data: blocks.RSSFeed{URL: "https://feeds.example.com", Limit: 5}}

	var view string
	require.NotPanics(t, func() {
		view = string(r.Render(context.Background(), b, View, RenderOptions{}))
	})
	assert.Contains(t, view, "could not be displayed")
	assert.Contains(t, view, `data-block-id="f"`)

	edit := string(r.Render(context.Background(), b, Edit, RenderOptions{}))
	assert.NotContains(t, edit, "could not be displayed", "edit mode never fetches, so nothing panics")
	assert.Contains(t, edit, `value="remove:0"`)
}

func TestRenderPagePicksFirstInfoboxByPosition(t *testing.T) {
	content := []blocks.Block{
		{ID: "a", Data: blocks.Content{Text: "<p>Alpha</p>"}},
		{ID: "dup", Data: blocks.Infobox{Title: "First box"}},
		{ID: "dup", Data: blocks.Infobox{Title: "Second box"}},
	}

	r := NewRenderer(Sources{})
	main, infobox := r.RenderPage(context.Background(), content)

	assert.Contains(t, string(infobox), "First box")
	assert.NotContains(t, string(infobox), "Second box")
	assert.NotContains(t, string(main), "box")
}

func TestMediaEmbedSandbox(t *testing.T) {
	r := NewRenderer(Sources{})
	embed := func(url string) string {
		return string(r.Render(context.Background(), blocks.Block{ID: "m", Data: blocks.Media{Kind: blocks.MediaEmbed, URL: url}}, View, RenderOptions{}))
	}

	local := embed("/static/demo.html")
	assert.Contains(t, local, `sandbox="allow-scripts allow-popups"`)
	assert.NotContains(t, local, "allow-same-origin")

	remote := embed("https://www.youtube.com/embed/abc")
	assert.Contains(t, remote, `sandbox="allow-scripts allow-same-origin allow-popups"`)

	assert.Equal(t, "allow-scripts allow-popups", embedSandbox("//"))
}

func TestPrefetchRecordsCheckpoint(t *testing.T) {
	rp := perf.MakeNewRequestPerf("GET page", "GET", "/wiki/p/contents/a")
	ctx := context.WithValue(context.Background(), perf.PerfContextKey, rp)

	r := NewRenderer(Sources{Pages: &fakePages{pages: samplePages()}})
	r.RenderDocument(ctx, []blocks.Block{{ID: "r", Data: blocks.RecentPages{Limit: 5}}}, View, nil)

	var found bool
	for _, b := range rp.Snapshot() {
		if b.Category == "LIVE" && b.Description == "Fetched 1 live blocks" {
			found = true
		}
	}
	assert.True(t, found, "expected a checkpoint after the live fetches")
}
