package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/feeds"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/prices"
	"github.com/radixwiki/wiki/src/render"
	"github.com/radixwiki/wiki/src/website"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/spf13/cobra"
)

func init() {
	var httpAddr string

	mcpCommand := &cobra.Command{
		Use:   "mcp",
		Short: "Serve read-only wiki tools over the Model Context Protocol",
		Long:  "Serves over stdio by default, or over streamable HTTP when --http is given.",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConnPool(ctx)
			defer conn.Close()

			pages := DBPages{Conn: conn}
			renderer := render.NewRenderer(render.Sources{
				Pages:  pageSource{pages},
				Prices: prices.NewClient(config.Config.Prices.OciswapBaseUrl, nil),
				Feeds:  feeds.NewClient(config.Config.Feeds.Timeout),
			})
			s := NewServer(pages, renderer)

			if httpAddr != "" {
				logging.Info().Str("addr", httpAddr).Msg("Serving MCP over HTTP")
				if err := server.NewStreamableHTTPServer(s).Start(httpAddr); err != nil {
					logging.Error().Err(err).Msg("MCP server stopped")
				}
				return
			}

			logging.Info().Msg("Serving MCP over stdio")
			if err := server.ServeStdio(s); err != nil {
				logging.Error().Err(err).Msg("MCP server stopped")
			}
		},
	}
	mcpCommand.Flags().StringVar(&httpAddr, "http", "", "Serve over streamable HTTP at this address instead of stdio")

	website.WebsiteCommand.AddCommand(mcpCommand)
}

// pageSource feeds the page listing blocks of rendered pages.
type pageSource struct {
	pages DBPages
}

func (s pageSource) RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error) {
	return s.pages.RecentPages(ctx, tagPath, limit)
}

func (s pageSource) PagesByIDs(ctx context.Context, ids []string) ([]*models.PageSummary, error) {
	return wikidata.FetchPagesByIDs(ctx, s.pages.Conn, ids)
}
