package website

import (
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radixwiki/wiki/src/perf"
	"github.com/radixwiki/wiki/src/wikiurl"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, perfCollector *perf.PerfCollector, services *Services) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) ResponseData {
					c.Conn = conn
					c.Services = services
					return h(c)
				}
			},
			trackRequestPerf(perfCollector),
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
		},
	}

	routes.GET(wikiurl.RegexPublic, func(c *RequestContext) ResponseData {
		var res ResponseData
		http.StripPrefix(wikiurl.StaticPath, http.FileServer(http.Dir("public"))).ServeHTTP(&res, c.Req)
		addCORSHeaders(c, &res)
		return res
	})
	routes.GET(wikiurl.RegexChromaCSS, ChromaCSS)

	api := routes.WithMiddleware(corsMiddleware, loadCommonData)
	{
		api.GET(wikiurl.RegexApiWiki, APIGetPage)
		api.GET(wikiurl.RegexApiWikiRecent, APIRecentPages)
		api.GET(wikiurl.RegexApiWikiByIDs, APIPagesByIDs)
		api.GET(wikiurl.RegexApiWikiByID, APIGetPageByID)
		api.GET(wikiurl.RegexApiWikiRevisions, APIPageRevisions)
		api.GET(wikiurl.RegexApiUserSearch, APISearchUsers)
		api.GET(wikiurl.RegexApiPrice, APIGetPrice)
		api.GET(wikiurl.RegexApiPriceLive, APIPriceLive)

		apiAuthed := api.WithMiddleware(apiNeedsAuth, csrfMiddleware)
		apiAuthed.POST(wikiurl.RegexApiWiki, APICreatePage)
		apiAuthed.PUT(wikiurl.RegexApiWikiByID, APIUpdatePage)
		apiAuthed.DELETE(wikiurl.RegexApiWikiByID, APIDeletePage)
		apiAuthed.POST(wikiurl.RegexApiUpload, APIUpload)

		api.AnyMethod(regexp.MustCompile(`^/api/`), FourOhFour)
	}

	site := routes.WithMiddleware(storeNoticesInCookieMiddleware, loadCommonData)
	{
		site.GET(wikiurl.RegexHomepage, func(c *RequestContext) ResponseData {
			return c.Redirect(wikiurl.BuildWikiIndex(), http.StatusSeeOther)
		})
		site.POST(wikiurl.RegexLogout, csrfMiddleware(Logout))

		site.GET(wikiurl.RegexWikiIndex, WikiIndex)
		site.GET(wikiurl.RegexCategory, WikiCategory)
		site.GET(wikiurl.RegexPage, WikiPage)
		site.GET(wikiurl.RegexPageHistory, WikiPageHistory)
		site.GET(wikiurl.RegexPageRevision, WikiPageRevision)
		site.GET(wikiurl.RegexExportPage, WikiExportPage)

		site.GET(wikiurl.RegexIdeasBoard, IdeasBoard)
		site.GET(wikiurl.RegexIdeasList, IdeasList)

		authed := site.WithMiddleware(needsAuth)
		authed.GET(wikiurl.RegexNewPage, WikiNewPage)
		authed.GET(wikiurl.RegexEditPage, WikiEditPage)
		authed.GET(wikiurl.RegexDeletePage, WikiDeletePage)

		authedForm := authed.WithMiddleware(csrfMiddleware)
		authedForm.POST(wikiurl.RegexNewPage, WikiNewPageSubmit)
		authedForm.POST(wikiurl.RegexEditPage, WikiEditPageSubmit)
		authedForm.POST(wikiurl.RegexDeletePage, WikiDeletePageSubmit)

		site.AnyMethod(regexp.MustCompile("^"), FourOhFour)
	}

	return router
}
