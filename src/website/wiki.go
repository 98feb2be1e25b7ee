package website

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/parsing"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/radixwiki/wiki/src/wikiurl"
)

const (
	pagesPerCategoryPage = 20
	indexRecentPages     = 10
)

type wikiIndexData struct {
	templates.BaseData

	SearchUrl   string
	Query       string
	Results     []templates.PageSummary
	Categories  []templates.Category
	RecentPages []templates.PageSummary
}

func WikiIndex(c *RequestContext) ResponseData {
	query := c.Req.URL.Query().Get("q")

	var results []*models.PageSummary
	if query != "" {
		var err error
		results, err = wikidata.SearchPages(c, c.Conn, query, wikidata.MaxSearchResults)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to search pages"))
		}
	}

	recent, err := wikidata.FetchRecentPages(c, c.Conn, "", indexRecentPages)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch recent pages"))
	}

	var res ResponseData
	res.MustWriteTemplate("wiki_index.html", wikiIndexData{
		BaseData:    getBaseData(c, "", nil),
		SearchUrl:   wikiurl.BuildWikiIndex(),
		Query:       query,
		Results:     templates.PageSummariesToTemplate(results),
		Categories:  templates.CategoriesToTemplate(),
		RecentPages: templates.PageSummariesToTemplate(recent),
	}, c.Perf)
	return res
}

type wikiCategoryData struct {
	templates.BaseData

	Category      templates.Category
	Subcategories []templates.Category
	Pages         []templates.PageSummary
	Pagination    templates.Pagination
}

func WikiCategory(c *RequestContext) ResponseData {
	tagPath := c.PathParams["tagpath"]

	numPages, err := wikidata.CountPages(c, c.Conn, tagPath)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to count pages"))
	}

	page, totalPages, ok := getPageInfo(c.Req.URL.Query().Get("page"), numPages, pagesPerCategoryPage)
	if !ok {
		return c.Redirect(wikiurl.BuildCategory(tagPath, 1), http.StatusSeeOther)
	}

	pages, err := wikidata.FetchPages(c, c.Conn, wikidata.PagesQuery{
		TagPath: tagPath,
		Limit:   pagesPerCategoryPage,
		Offset:  (page - 1) * pagesPerCategoryPage,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch pages"))
	}

	category := config.Category{Path: tagPath, Name: templates.CategoryName(tagPath)}
	if cat, ok := config.FindCategory(tagPath); ok && cat.Path == tagPath {
		category = cat
	}

	var subcategories []templates.Category
	for _, cat := range config.Categories {
		if strings.HasPrefix(cat.Path, tagPath+"/") {
			subcategories = append(subcategories, templates.CategoryToTemplate(cat))
		}
	}

	var res ResponseData
	res.MustWriteTemplate("wiki_category.html", wikiCategoryData{
		BaseData:      getBaseData(c, category.Name, categoryBreadcrumbs(tagPath)),
		Category:      templates.CategoryToTemplate(category),
		Subcategories: subcategories,
		Pages:         templates.PageSummariesToTemplate(pages),
		Pagination: buildPagination(page, totalPages, func(p int) string {
			return wikiurl.BuildCategory(tagPath, p)
		}),
	}, c.Perf)
	return res
}

// fetchPageFromPath loads the page named by the tagpath and slug path
// params. When ok is false, res is the response to send instead.
func fetchPageFromPath(c *RequestContext) (page *models.Page, res ResponseData, ok bool) {
	page, err := wikidata.FetchPage(c, c.Conn, c.PathParams["tagpath"], c.PathParams["slug"])
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, FourOhFour(c), false
		}
		return nil, c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch page")), false
	}
	return page, ResponseData{}, true
}

// canEditPage is whether user may change page. Anyone signed in may edit,
// except in author-only categories, where only the page's author may.
func canEditPage(user *models.User, page *models.Page) bool {
	if user == nil {
		return false
	}
	if config.IsAuthorOnly(page.TagPath) {
		return page.IsAuthor(user)
	}
	return true
}

const notAuthorMessage = "Pages in this category can only be edited by their author."

func pageBreadcrumbs(page *models.Page) []templates.Breadcrumb {
	return append(categoryBreadcrumbs(page.TagPath), templates.Breadcrumb{
		Name: page.Title,
		Url:  wikiurl.BuildPage(page.TagPath, page.Slug),
	})
}

type wikiPageData struct {
	templates.BaseData

	Page     templates.Page
	Metadata []templates.MetadataField
	Content  template.HTML
	Infobox  template.HTML
}

func WikiPage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}

	content, infobox := c.Services.Renderer.RenderPage(c, page.Content)

	res.MustWriteTemplate("wiki_page.html", wikiPageData{
		BaseData: getBaseData(c, page.Title, pageBreadcrumbs(page)),
		Page:     templates.PageToTemplate(page, canEditPage(c.CurrentUser, page)),
		Metadata: templates.MetadataFields(page),
		Content:  content,
		Infobox:  infobox,
	}, c.Perf)
	return res
}

type wikiHistoryData struct {
	templates.BaseData

	Page      templates.Page
	Revisions []templates.Revision
}

func WikiPageHistory(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}

	revisions, err := wikidata.FetchRevisions(c, c.Conn, page.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch revisions"))
	}

	var tmplRevisions []templates.Revision
	for _, rev := range revisions {
		tmplRevisions = append(tmplRevisions, templates.RevisionToTemplate(rev, page))
	}

	res.MustWriteTemplate("wiki_history.html", wikiHistoryData{
		BaseData:  getBaseData(c, "History of "+page.Title, append(pageBreadcrumbs(page), templates.Breadcrumb{Name: "History"})),
		Page:      templates.PageToTemplate(page, canEditPage(c.CurrentUser, page)),
		Revisions: tmplRevisions,
	}, c.Perf)
	return res
}

type wikiRevisionData struct {
	templates.BaseData

	Page     templates.Page
	Revision templates.Revision
	Content  template.HTML
	Infobox  template.HTML
}

func WikiPageRevision(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}

	version, err := strconv.Atoi(c.PathParams["version"])
	if err != nil || version < 1 {
		return FourOhFour(c)
	}

	revision, err := wikidata.FetchRevision(c, c.Conn, page.ID, version)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch revision"))
	}

	var authorName *string
	if revision.AuthorID != nil {
		author, err := wikidata.FetchUser(c, c.Conn, *revision.AuthorID)
		if err == nil {
			name := author.BestName()
			authorName = &name
		} else if !errors.Is(err, db.NotFound) {
			return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to fetch revision author"))
		}
	}

	content, infobox := c.Services.Renderer.RenderPage(c, revision.Content)

	res.MustWriteTemplate("wiki_revision.html", wikiRevisionData{
		BaseData: getBaseData(c, fmt.Sprintf("%s (version %d)", revision.Title, revision.Version), append(pageBreadcrumbs(page), templates.Breadcrumb{
			Name: fmt.Sprintf("Version %d", revision.Version),
		})),
		Page: templates.PageToTemplate(page, canEditPage(c.CurrentUser, page)),
		Revision: templates.RevisionToTemplate(&wikidata.RevisionSummary{
			ID:          revision.ID,
			PageID:      revision.PageID,
			Title:       revision.Title,
			Version:     revision.Version,
			AuthorID:    revision.AuthorID,
			AuthorName:  authorName,
			ContentHash: revision.ContentHash,
			CreatedAt:   revision.CreatedAt,
		}, page),
		Content: content,
		Infobox: infobox,
	}, c.Perf)
	return res
}

// WikiExportPage serves the page as markdown. The ETag is the content hash,
// so unchanged pages aren't converted again by well-behaved clients.
func WikiExportPage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}

	hash, err := wikidata.ContentHash(page.Content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	etag := strconv.Quote(hash)
	if c.Req.Header.Get("If-None-Match") == etag {
		res.StatusCode = http.StatusNotModified
		res.Header().Set("ETag", etag)
		return res
	}

	markdown, err := c.Services.Renderer.PageMarkdown(c, page.Title, page.Content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	res.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	res.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.md"`, page.Slug))
	res.Header().Set("ETag", etag)
	res.Write([]byte(markdown))
	return res
}

type wikiDeleteData struct {
	templates.BaseData

	Page      templates.Page
	SubmitUrl string
}

func WikiDeletePage(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return Forbidden(c, notAuthorMessage)
	}

	res.MustWriteTemplate("wiki_delete.html", wikiDeleteData{
		BaseData:  getBaseData(c, "Delete "+page.Title, append(pageBreadcrumbs(page), templates.Breadcrumb{Name: "Delete"})),
		Page:      templates.PageToTemplate(page, true),
		SubmitUrl: wikiurl.BuildDeletePage(page.TagPath, page.Slug),
	}, c.Perf)
	return res
}

func WikiDeletePageSubmit(c *RequestContext) ResponseData {
	page, res, ok := fetchPageFromPath(c)
	if !ok {
		return res
	}
	if !canEditPage(c.CurrentUser, page) {
		return Forbidden(c, notAuthorMessage)
	}

	err := wikidata.DeletePage(c, c.Conn, page.ID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to delete page"))
	}

	c.Logger.Info().Str("page", page.ID.String()).Str("user", c.CurrentUser.ID.String()).Msg("page deleted")
	res = c.Redirect(wikiurl.BuildCategory(page.TagPath, 1), http.StatusSeeOther)
	res.AddFutureNotice("success", fmt.Sprintf("Deleted &ldquo;%s&rdquo;.", template.HTMLEscapeString(page.Title)))
	return res
}

// Logout clears the login cookie. The wallet login service owns the session
// itself.
func Logout(c *RequestContext) ResponseData {
	redirect := c.Req.URL.Query().Get("redirect")
	if redirect == "" || !isLocalRedirect(redirect) {
		redirect = wikiurl.BuildHomepage()
	}

	res := c.Redirect(redirect, http.StatusSeeOther)
	res.SetCookie(&http.Cookie{
		Name:     config.Config.Auth.CookieName,
		Path:     "/",
		MaxAge:   -1,
		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return res
}

// Browsers treat a backslash like a slash, so "/\host" leaves the site too.
func isLocalRedirect(dest string) bool {
	if strings.HasPrefix(dest, "/") {
		return len(dest) == 1 || (dest[1] != '/' && dest[1] != '\\')
	}
	return config.Config.BaseUrl != "" && strings.HasPrefix(dest, config.Config.BaseUrl+"/")
}

func ChromaCSS(c *RequestContext) ResponseData {
	var res ResponseData
	res.Header().Set("Content-Type", "text/css; charset=utf-8")
	res.Header().Set("Cache-Control", "public, max-age=86400")
	res.Write([]byte(parsing.ChromaCSS(parsing.DefaultChromaStyle)))
	return res
}
