package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/prices"
)

var errNoSource = errors.New("source not configured")

type liveResult struct {
	Pages []*models.PageSummary
	Quote *prices.Quote
	Items []feeds.Item
	Err   error
}

func isLive(b blocks.Block) bool {
	switch b.Data.(type) {
	case blocks.RecentPages, blocks.PageList, blocks.AssetPrice, blocks.RSSFeed:
		return true
	}
	return false
}

// prefetch loads every live block of the document at once, so a page with
// several feeds waits for the slowest one rather than their sum.
func (r *Renderer) prefetch(ctx context.Context, content []blocks.Block) map[string]liveResult {
	results := map[string]liveResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	blocks.Walk(content, func(b blocks.Block, _ blocks.Path) {
		if !isLive(b) {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer logging.LogPanics(logging.ExtractLogger(ctx))
			res := r.fetch(ctx, b)
			mu.Lock()
			results[b.ID] = res
			mu.Unlock()
		}()
	})
	wg.Wait()

	if len(results) > 0 {
		perf.ExtractPerf(ctx).Checkpoint("LIVE", fmt.Sprintf("Fetched %d live blocks", len(results)))
	}
	return results
}

func (r *Renderer) liveFor(ctx context.Context, b blocks.Block, doc *document) liveResult {
	if res, ok := doc.live[b.ID]; ok {
		return res
	}
	return r.fetch(ctx, b)
}

// fetch bounds the block's source call by LiveTimeout. The parent context
// ends with the request, which cancels any fetch still running.
func (r *Renderer) fetch(ctx context.Context, b blocks.Block) liveResult {
	timeout := r.LiveTimeout
	if timeout <= 0 {
		timeout = DefaultLiveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer perf.ExtractPerf(ctx).StartBlock("LIVE", string(b.Type())).End()

	var res liveResult
	switch data := b.Data.(type) {
	case blocks.RecentPages:
		if r.Sources.Pages == nil {
			res.Err = errNoSource
			break
		}
		res.Pages, res.Err = r.Sources.Pages.RecentPages(ctx, data.TagPath, data.Limit)
	case blocks.PageList:
		if len(data.PageIDs) == 0 {
			break
		}
		if r.Sources.Pages == nil {
			res.Err = errNoSource
			break
		}
		res.Pages, res.Err = r.Sources.Pages.PagesByIDs(ctx, data.PageIDs)
	case blocks.AssetPrice:
		if data.ResourceAddress == "" {
			break
		}
		if r.Sources.Prices == nil {
			res.Err = prices.ErrUnavailable
			break
		}
		res.Quote, res.Err = r.Sources.Prices.Quote(ctx, data.ResourceAddress)
	case blocks.RSSFeed:
		if data.URL == "" {
			break
		}
		if r.Sources.Feeds == nil {
			res.Err = feeds.ErrUnavailable
			break
		}
		res.Items, res.Err = r.Sources.Feeds.Fetch(ctx, data.URL, data.Limit)
	}

	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		logging.ExtractLogger(ctx).Warn().Err(res.Err).
			Str("block", b.ID).
			Str("type", string(b.Type())).
			Msg("live block fetch failed")
	}
	return res
}

// errorMessage is the inline text shown in place of a failed live block.
func errorMessage(t blocks.Type, err error) string {
	switch {
	case t == blocks.TypeAssetPrice:
		return prices.ErrUnavailable.Error()
	case t == blocks.TypeRSSFeed:
		return feeds.ErrUnavailable.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out while loading pages"
	default:
		return "Could not load pages"
	}
}
