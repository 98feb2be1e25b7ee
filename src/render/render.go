/*
Package render draws blocks in one of two modes. View is what readers see:
sanitized HTML plus live data fetched through Sources. Edit is a plain HTML
form for the block, wrapped in the move/duplicate/delete/insert controls.

Edit forms hold no state of their own. Their field names encode the block's
path (blk.<path>.<field>), and ApplyForm reads a submitted form back into a
copy of the document.
*/
package render

import (
	"context"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/parsing"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/prices"
)

type Mode int

const (
	View Mode = iota
	Edit
)

type PageSource interface {
	RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error)
	PagesByIDs(ctx context.Context, ids []string) ([]*models.PageSummary, error)
}

type PriceSource interface {
	Quote(ctx context.Context, address string) (*prices.Quote, error)
}

type FeedSource interface {
	Fetch(ctx context.Context, url string, limit int) ([]feeds.Item, error)
}

// Sources supply the live blocks. A nil source renders its blocks in the
// error state.
type Sources struct {
	Pages  PageSource
	Prices PriceSource
	Feeds  FeedSource
}

const DefaultLiveTimeout = 5 * time.Second

type Renderer struct {
	Sources Sources
	// Upper bound for each live block's fetch.
	LiveTimeout time.Duration
}

func NewRenderer(sources Sources) *Renderer {
	return &Renderer{
		Sources:     sources,
		LiveTimeout: DefaultLiveTimeout,
	}
}

type RenderOptions struct {
	// The whole document the block belongs to. The table of contents and
	// heading anchors are computed over it. Defaults to the block alone.
	AllContent []blocks.Block
	// Where the block sits in AllContent. Names the edit form's fields.
	Path blocks.Path
	// Highlighted in edit mode, usually the block the last action touched.
	Selected blocks.Path

	doc *document
}

// State shared by every block of one document render.
type document struct {
	all     []blocks.Block
	anchors map[string][]string
	live    map[string]liveResult
}

func (d *document) headingAnchors(blockID string) []string {
	if d.anchors == nil {
		d.anchors = blocks.HeadingAnchors(d.all)
	}
	return d.anchors[blockID]
}

// RenderDocument renders a whole list of blocks. In view mode every live
// block is fetched up front, concurrently.
func (r *Renderer) RenderDocument(ctx context.Context, content []blocks.Block, mode Mode, selected blocks.Path) template.HTML {
	p := perf.ExtractPerf(ctx)
	defer p.StartBlock("RENDER", "Render document").End()

	doc := &document{all: content}
	if mode == View {
		doc.live = r.prefetch(ctx, content)
	}

	var b strings.Builder
	for i, block := range content {
		b.WriteString(string(r.Render(ctx, block, mode, RenderOptions{
			AllContent: content,
			Path:       blocks.Path{i},
			Selected:   selected,
			doc:        doc,
		})))
	}
	if mode == Edit {
		b.WriteString(string(r.exec(ctx, "edit_insert_menu", insertMenuData{
			Path:    blocks.Path{len(content)}.String(),
			Entries: blocks.Entries(),
			Label:   "Add block",
		})))
	}
	return template.HTML(b.String())
}

// RenderPage renders a stored page for reading: the infobox, if any, comes
// out separately for the sidebar, and any further infoboxes are dropped.
// Headings and live data are still resolved over the whole document.
func (r *Renderer) RenderPage(ctx context.Context, content []blocks.Block) (main template.HTML, infobox template.HTML) {
	p := perf.ExtractPerf(ctx)
	defer p.StartBlock("RENDER", "Render page").End()

	doc := &document{all: content, live: r.prefetch(ctx, content)}

	var b strings.Builder
	infoboxAt := blocks.InfoboxIndex(content)
	for i, block := range content {
		if i != infoboxAt && block.Type() == blocks.TypeInfobox {
			continue
		}
		html := r.Render(ctx, block, View, RenderOptions{
			AllContent: content,
			Path:       blocks.Path{i},
			doc:        doc,
		})
		if i == infoboxAt {
			infobox = html
		} else {
			b.WriteString(string(html))
		}
	}
	return template.HTML(b.String()), infobox
}

// PageMarkdown converts a page as readers see it to markdown, infobox first.
func (r *Renderer) PageMarkdown(ctx context.Context, title string, content []blocks.Block) (string, error) {
	main, infobox := r.RenderPage(ctx, content)
	body, err := parsing.ToMarkdown(string(infobox) + string(main))
	if err != nil {
		return "", oops.New(err, "failed to convert page to markdown")
	}
	return "# " + title + "\n\n" + body + "\n", nil
}

// Render draws one block. Failures, including blocks this version doesn't
// know, come out as inline placeholders rather than errors.
func (r *Renderer) Render(ctx context.Context, b blocks.Block, mode Mode, opts RenderOptions) (out template.HTML) {
	if opts.AllContent == nil {
		opts.AllContent = []blocks.Block{b}
	}
	if opts.Path == nil {
		opts.Path = blocks.Path{0}
	}
	if opts.doc == nil {
		opts.doc = &document{all: opts.AllContent}
	}

	defer func() {
		if p := recover(); p != nil {
			logging.ExtractLogger(ctx).Error().
				Interface("panic", p).
				Str("block", b.ID).
				Str("type", string(b.Type())).
				Msg("panic while rendering block")
			out = r.failedBlock(ctx, b, mode, opts)
		}
	}()

	inner, known := r.renderInner(ctx, b, mode, opts)
	if mode == Edit {
		return r.editWrapper(ctx, b, known, inner, opts)
	}
	return r.exec(ctx, "view_wrapper", viewWrapperData{
		ID:    b.ID,
		Type:  string(b.Type()),
		Inner: inner,
	})
}

// failedBlock stands in for a block whose rendering panicked. In the editor
// it keeps the wrapper so the block can still be removed.
func (r *Renderer) failedBlock(ctx context.Context, b blocks.Block, mode Mode, opts RenderOptions) (out template.HTML) {
	inner := r.exec(ctx, "view_failed", blockData{ID: b.ID, Type: string(b.Type())})
	if mode != Edit {
		return r.exec(ctx, "view_wrapper", viewWrapperData{ID: b.ID, Type: string(b.Type()), Inner: inner})
	}

	defer func() {
		if recover() != nil {
			out = inner
		}
	}()
	return r.editWrapper(ctx, b, false, inner, opts)
}

func (r *Renderer) renderInner(ctx context.Context, b blocks.Block, mode Mode, opts RenderOptions) (template.HTML, bool) {
	d := blockData{
		ID:    b.ID,
		Path:  opts.Path.String(),
		Field: FieldPrefix + opts.Path.String(),
		Data:  b.Data,
	}
	prefix := "view_"
	if mode == Edit {
		prefix = "edit_"
	}

	switch data := b.Data.(type) {
	case blocks.Content:
		if mode == View {
			text := parsing.SanitizeHTML(data.Text)
			d.HTML = template.HTML(parsing.SetHeadingAnchors(text, opts.doc.headingAnchors(b.ID)))
		}
	case blocks.Media:
		d.Options = []string{string(blocks.MediaImage), string(blocks.MediaVideo), string(blocks.MediaEmbed)}
		d.Safe = parsing.SafeURL(data.URL) && data.URL != ""
		d.Sandbox = embedSandbox(data.URL)
	case blocks.Callout:
		d.Colors = calloutColorsFor(data.Variant)
		d.Options = calloutVariantNames()
		d.HTML = parsing.Linkify(data.Text)
	case blocks.Divider:
	case blocks.Code:
		d.Options = parsing.CodeLanguages()
		if mode == View {
			d.HTML = parsing.HighlightCode(data.Language, data.Code)
		}
	case blocks.Quote:
		d.HTML = parsing.Linkify(data.Text)
	case blocks.Table:
		d.Data = data.Normalize()
	case blocks.TableOfContents:
		if mode == View {
			d.Headings = blocks.Headings(opts.AllContent, data.MaxDepth)
		}
	case blocks.RecentPages, blocks.PageList, blocks.AssetPrice, blocks.RSSFeed:
		if mode == View {
			res := r.liveFor(ctx, b, opts.doc)
			d.Pages = res.Pages
			d.Quote = res.Quote
			d.Items = res.Items
			if res.Err != nil {
				d.Err = errorMessage(b.Type(), res.Err)
			}
		}
	case blocks.Columns:
		for j, col := range data.Columns {
			d.Lists = append(d.Lists, r.renderList(ctx, col.ID, col.Blocks, mode, opts, j))
		}
		d.CanGrow = len(data.Columns) < blocks.MaxColumnCount
	case blocks.Infobox:
		d.Lists = []childList{r.renderList(ctx, b.ID, data.Blocks, mode, opts, 0)}
		d.Safe = parsing.SafeURL(data.Image) && data.Image != ""
	default:
		d.Type = string(b.Type())
		if u, ok := b.Data.(blocks.Unknown); ok && u.Malformed() {
			d.Err = "This " + u.TypeName + " block has settings that could not be read."
		}
		return r.exec(ctx, prefix+"unknown", d), false
	}

	return r.exec(ctx, prefix+string(b.Type()), d), true
}

func (r *Renderer) renderList(ctx context.Context, id string, list []blocks.Block, mode Mode, opts RenderOptions, j int) childList {
	parent := opts.Path[0]
	result := childList{
		ID:         id,
		InsertPath: blocks.Path{parent, j, len(list)}.String(),
		Entries:    blocks.AtomicEntries(),
	}
	for k, nested := range list {
		result.Blocks = append(result.Blocks, r.Render(ctx, nested, mode, RenderOptions{
			AllContent: opts.AllContent,
			Path:       blocks.Path{parent, j, k},
			Selected:   opts.Selected,
			doc:        opts.doc,
		}))
	}
	return result
}

func (r *Renderer) editWrapper(ctx context.Context, b blocks.Block, known bool, inner template.HTML, opts RenderOptions) template.HTML {
	listLen := len(opts.AllContent)
	index := opts.Path[0]
	entries := blocks.Entries()
	if opts.Path.IsNested() {
		list, _ := blocks.List(opts.AllContent, opts.Path[0], opts.Path[1])
		listLen = len(list)
		index = opts.Path[2]
		entries = blocks.AtomicEntries()
	}

	below := make(blocks.Path, len(opts.Path))
	copy(below, opts.Path)
	below[len(below)-1]++

	label, icon := string(b.Type()), "?"
	if e, ok := blocks.Lookup(b.Type()); ok {
		label, icon = e.Label, e.Icon
	}

	return r.exec(ctx, "edit_wrapper", editWrapperData{
		ID:       b.ID,
		Label:    label,
		Icon:     icon,
		Path:     opts.Path.String(),
		Known:    known,
		First:    index == 0,
		Last:     index == listLen-1,
		Selected: opts.Selected.String() == opts.Path.String(),
		Inner:    inner,
		Insert: insertMenuData{
			Path:    below.String(),
			Entries: entries,
			Label:   "Insert below",
		},
	})
}

func (r *Renderer) exec(ctx context.Context, name string, data any) template.HTML {
	var b strings.Builder
	if err := blockTemplates.ExecuteTemplate(&b, name, data); err != nil {
		logging.ExtractLogger(ctx).Error().Err(err).Str("template", name).Msg("failed to render block template")
		return template.HTML(`<div class="wiki-block-error">This block could not be displayed.</div>`)
	}
	return template.HTML(b.String())
}

// embedSandbox never grants allow-same-origin to frames from our own origin,
// since together with allow-scripts they could remove the sandbox.
func embedSandbox(rawURL string) string {
	const crossOrigin = "allow-scripts allow-same-origin allow-popups"
	const sameOrigin = "allow-scripts allow-popups"

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return sameOrigin
	}
	if base, err := url.Parse(config.Config.BaseUrl); err == nil && base.Host != "" && strings.EqualFold(base.Host, parsed.Host) {
		return sameOrigin
	}
	return crossOrigin
}
