package website

import (
	"strings"

	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikiurl"
)

func getBaseDataAutocrumb(c *RequestContext, title string) templates.BaseData {
	return getBaseData(c, title, []templates.Breadcrumb{{Name: title, Url: ""}})
}

// NOTE: If you set breadcrumbs, a breadcrumb for the wiki index is prepended
// when necessary. If you pass nil, no breadcrumbs will be created.
func getBaseData(c *RequestContext, title string, breadcrumbs []templates.Breadcrumb) templates.BaseData {
	var templateUser *templates.User
	if c.CurrentUser != nil {
		u := templates.UserToTemplate(c.CurrentUser)
		templateUser = &u
	}

	notices := getNoticesFromCookie(c)

	if len(breadcrumbs) > 0 {
		indexUrl := wikiurl.BuildWikiIndex()
		if breadcrumbs[0].Url != indexUrl {
			rootBreadcrumb := templates.Breadcrumb{
				Name: "Wiki",
				Url:  indexUrl,
			}
			breadcrumbs = append([]templates.Breadcrumb{rootBreadcrumb}, breadcrumbs...)
		}
	}

	newPageTagPath := ""
	if len(config.Categories) > 0 {
		newPageTagPath = config.Categories[0].Path
	}

	return templates.BaseData{
		Title:       title,
		Breadcrumbs: breadcrumbs,
		Notices:     notices,

		CurrentUrl: c.FullUrl(),
		LoginUrl:   wikiurl.BuildLogin(c.FullUrl()),

		User:      templateUser,
		CSRFToken: c.CSRFToken,

		Header: templates.Header{
			HomepageUrl:  wikiurl.BuildHomepage(),
			WikiIndexUrl: wikiurl.BuildWikiIndex(),
			IdeasUrl:     wikiurl.BuildIdeasBoard(),
			NewPageUrl:   wikiurl.BuildNewPage(newPageTagPath),
			LogoutUrl:    wikiurl.BuildLogout(c.FullUrl()),
		},
	}
}

// categoryBreadcrumbs has one breadcrumb per configured ancestor of the tag
// path, plus the tag path itself.
func categoryBreadcrumbs(tagPath string) []templates.Breadcrumb {
	var result []templates.Breadcrumb
	for _, cat := range config.Categories {
		if strings.HasPrefix(tagPath, cat.Path+"/") {
			result = append(result, templates.Breadcrumb{Name: cat.Name, Url: wikiurl.BuildCategory(cat.Path, 1)})
		}
	}
	result = append(result, templates.Breadcrumb{
		Name: templates.CategoryName(tagPath),
		Url:  wikiurl.BuildCategory(tagPath, 1),
	})
	return result
}
