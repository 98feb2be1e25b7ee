// Package mcpserver exposes the wiki to agents over the Model Context
// Protocol. Every tool is read-only.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/radixwiki/wiki/src/blocks"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/utils"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/radixwiki/wiki/src/wikiurl"
)

const Version = "1.0.0"

const (
	defaultResults = 10
	maxResults     = wikidata.MaxSearchResults
)

type Pages interface {
	FetchPage(ctx context.Context, tagPath, slug string) (*models.Page, error)
	RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error)
	SearchPages(ctx context.Context, query string, limit int) ([]*models.PageSummary, error)
}

type Markdowner interface {
	PageMarkdown(ctx context.Context, title string, content []blocks.Block) (string, error)
}

// DBPages reads pages straight from the database.
type DBPages struct {
	Conn db.ConnOrTx
}

var _ Pages = DBPages{}

func (p DBPages) FetchPage(ctx context.Context, tagPath, slug string) (*models.Page, error) {
	return wikidata.FetchPage(ctx, p.Conn, tagPath, slug)
}

func (p DBPages) RecentPages(ctx context.Context, tagPath string, limit int) ([]*models.PageSummary, error) {
	return wikidata.FetchRecentPages(ctx, p.Conn, tagPath, limit)
}

func (p DBPages) SearchPages(ctx context.Context, query string, limit int) ([]*models.PageSummary, error) {
	return wikidata.SearchPages(ctx, p.Conn, query, limit)
}

type GetPageRequest struct {
	TagPath string `json:"tagPath"`
	Slug    string `json:"slug"`
}

type RecentPagesRequest struct {
	TagPath string `json:"tagPath"`
	Limit   int    `json:"limit"`
}

type SearchPagesRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type PageResult struct {
	Title     string    `json:"title"`
	TagPath   string    `json:"tagPath"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewServer(pages Pages, markdown Markdowner) *server.MCPServer {
	s := server.NewMCPServer(
		"Radix Wiki",
		Version,
		server.WithToolCapabilities(false),
	)

	getPage := mcp.NewTool("get_page",
		mcp.WithDescription("Get a wiki page as markdown"),
		mcp.WithString("tagPath",
			mcp.Required(),
			mcp.Description("The page's category path, e.g. 'contents/tech'"),
		),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The page's slug within its category"),
		),
	)
	s.AddTool(getPage, mcp.NewTypedToolHandler(getPageHandler(pages, markdown)))

	recent := mcp.NewTool("recent_pages",
		mcp.WithDescription("List the most recently updated wiki pages, optionally within a category and its subcategories"),
		mcp.WithString("tagPath",
			mcp.Description("Only list pages under this category path"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("How many pages to list, at most %d", blocks.MaxRecentPagesLimit)),
		),
	)
	s.AddTool(recent, mcp.NewTypedToolHandler(recentPagesHandler(pages)))

	search := mcp.NewTool("search_pages",
		mcp.WithDescription("Search wiki pages by title and excerpt"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("How many pages to return, at most %d", maxResults)),
		),
	)
	s.AddTool(search, mcp.NewTypedToolHandler(searchPagesHandler(pages)))

	return s
}

func getPageHandler(pages Pages, markdown Markdowner) func(ctx context.Context, request mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetPageRequest) (*mcp.CallToolResult, error) {
		tagPath := wikidata.NormalizeTagPath(args.TagPath)
		slug := strings.TrimSpace(args.Slug)
		if tagPath == "" || slug == "" {
			return mcp.NewToolResultError("tagPath and slug are required"), nil
		}

		page, err := pages.FetchPage(ctx, tagPath, slug)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("no page at %s/%s", tagPath, slug)), nil
			}
			return nil, err
		}

		md, err := markdown.PageMarkdown(ctx, page.Title, page.Content)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(md), nil
	}
}

func recentPagesHandler(pages Pages) func(ctx context.Context, request mcp.CallToolRequest, args RecentPagesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args RecentPagesRequest) (*mcp.CallToolResult, error) {
		limit := utils.Clamp(1, utils.OrDefault(args.Limit, defaultResults), blocks.MaxRecentPagesLimit)
		list, err := pages.RecentPages(ctx, wikidata.NormalizeTagPath(args.TagPath), limit)
		if err != nil {
			return nil, err
		}
		return pageListResult(list)
	}
}

func searchPagesHandler(pages Pages) func(ctx context.Context, request mcp.CallToolRequest, args SearchPagesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SearchPagesRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(args.Query)
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := utils.Clamp(1, utils.OrDefault(args.Limit, defaultResults), maxResults)
		list, err := pages.SearchPages(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return pageListResult(list)
	}
}

func pageListResult(list []*models.PageSummary) (*mcp.CallToolResult, error) {
	results := make([]PageResult, 0, len(list))
	for _, p := range list {
		results = append(results, PageResult{
			Title:     p.Title,
			TagPath:   p.TagPath,
			Slug:      p.Slug,
			Excerpt:   p.Excerpt,
			URL:       wikiurl.BuildPage(p.TagPath, p.Slug),
			UpdatedAt: p.UpdatedAt,
		})
	}
	data, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
