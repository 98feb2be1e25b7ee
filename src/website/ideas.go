package website

import (
	"net/http"

	"github.com/radixwiki/wiki/src/ideas"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikidata"
	"github.com/radixwiki/wiki/src/wikiurl"
)

func fetchIdeas(c *RequestContext) ([]ideas.Idea, error) {
	pages, err := wikidata.FetchPages(c, c.Conn, wikidata.PagesQuery{
		TagPath:              ideas.TagPath,
		IncludeSubcategories: true,
	})
	if err != nil {
		return nil, oops.New(err, "failed to fetch ideas")
	}
	return ideas.FromPages(pages), nil
}

type ideasBoardData struct {
	templates.BaseData

	Columns    []templates.IdeaColumn
	ListUrl    string
	NewIdeaUrl string
}

func IdeasBoard(c *RequestContext) ResponseData {
	list, err := fetchIdeas(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.MustWriteTemplate("ideas_board.html", ideasBoardData{
		BaseData:   getBaseDataAutocrumb(c, "Ideas"),
		Columns:    templates.IdeaBoardToTemplate(ideas.Board(list)),
		ListUrl:    wikiurl.BuildIdeasList("", "", ""),
		NewIdeaUrl: wikiurl.BuildNewPage(ideas.TagPath),
	}, c.Perf)
	return res
}

type sortOption struct {
	Value string
	Label string
}

var ideaSortOptions = []sortOption{
	{string(ideas.SortNewest), "Newest"},
	{string(ideas.SortUpdated), "Recently updated"},
	{string(ideas.SortTitle), "Title"},
}

type ideasListData struct {
	templates.BaseData

	BoardUrl  string
	SubmitUrl string

	Status      string
	Category    string
	Sort        string
	Statuses    []string
	Categories  []string
	SortOptions []sortOption

	Ideas []templates.Idea
}

func IdeasList(c *RequestContext) ResponseData {
	list, err := fetchIdeas(c)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	query := c.Req.URL.Query()
	filter := ideas.Filter{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		Sort:     ideas.ParseSort(query.Get("sort")),
	}

	statuses := make([]string, 0, len(ideas.Statuses))
	for _, s := range ideas.Statuses {
		statuses = append(statuses, string(s))
	}

	var res ResponseData
	res.MustWriteTemplate("ideas_list.html", ideasListData{
		BaseData: getBaseData(c, "Ideas", []templates.Breadcrumb{
			{Name: "Ideas", Url: wikiurl.BuildIdeasBoard()},
			{Name: "List"},
		}),
		BoardUrl:  wikiurl.BuildIdeasBoard(),
		SubmitUrl: wikiurl.BuildIdeasList("", "", ""),

		Status:      filter.Status,
		Category:    filter.Category,
		Sort:        string(filter.Sort),
		Statuses:    statuses,
		Categories:  ideas.Categories(list),
		SortOptions: ideaSortOptions,

		Ideas: templates.IdeasToTemplate(ideas.List(list, filter)),
	}, c.Perf)
	return res
}
