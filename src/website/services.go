package website

import (
	"context"
	"time"

	"github.com/radixwiki/wiki/src/assets"
	"github.com/radixwiki/wiki/src/auth"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/radixwiki/wiki/src/render"
	"github.com/radixwiki/wiki/src/wikidata"
)

type PriceSource interface {
	Quote(ctx context.Context, address string) (*prices.Quote, error)
	Watch(ctx context.Context, address string, interval time.Duration) <-chan prices.Update
}

// Services are the long-lived dependencies handlers share.
type Services struct {
	Verifier *auth.Verifier
	Renderer *render.Renderer
	Prices   PriceSource
	// Nil when object storage isn't configured; uploads are then refused.
	Assets *assets.Store

	PricePollInterval time.Duration
}

// dbPageSource serves the page listing blocks straight from the database.
type dbPageSource struct {
	conn db.ConnOrTx
}

var _ render.PageSource = dbPageSource{}

func (s dbPageSource) RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error) {
	return wikidata.FetchRecentPages(ctx, s.conn, tagPath, limit)
}

func (s dbPageSource) PagesByIDs(ctx context.Context, ids []string) ([]*models.PageSummary, error) {
	return wikidata.FetchPagesByIDs(ctx, s.conn, ids)
}
