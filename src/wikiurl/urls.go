package wikiurl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/oops"
)

var RegexHomepage = regexp.MustCompile("^/$")

func BuildHomepage() string {
	return Url("/", nil)
}

/*
* Auth
 */

// Sign-in happens on the wallet login service, which sends the user back to
// returnUrl with a token cookie set.
func BuildLogin(returnUrl string) string {
	loginUrl := config.Config.Auth.LoginUrl
	if q := encodeQuery([]Q{{"return", returnUrl}}); q != "" {
		loginUrl += "?" + q
	}
	return loginUrl
}

var RegexLogout = regexp.MustCompile("^/logout$")

func BuildLogout(redirect string) string {
	return Url("/logout", []Q{{"redirect", redirect}})
}

/*
* Wiki
 */

var RegexWikiIndex = regexp.MustCompile(`^/wiki/?$`)

func BuildWikiIndex() string {
	return Url("/wiki", nil)
}

var RegexCategory = regexp.MustCompile(`^/wiki/c/(?P<tagpath>` + tagPathPattern + `)$`)

func BuildCategory(tagPath string, page int) string {
	if !reValidTagPath.MatchString(tagPath) {
		panic(oops.New(nil, "invalid tag path %q", tagPath))
	}
	if page < 1 {
		panic(oops.New(nil, "Invalid category page (%d), must be >= 1", page))
	}
	var query []Q
	if page > 1 {
		query = append(query, Q{"page", strconv.Itoa(page)})
	}
	return Url("/wiki/c/"+tagPath, query)
}

var RegexNewPage = regexp.MustCompile(`^/wiki/new$`)

func BuildNewPage(tagPath string) string {
	return Url("/wiki/new", []Q{{"tagPath", tagPath}})
}

var RegexPage = regexp.MustCompile(`^/wiki/p/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)$`)

func BuildPage(tagPath, slug string) string {
	mustPageParts(tagPath, slug)
	return Url("/wiki/p/"+tagPath+"/"+slug, nil)
}

// Anchors point at heading ids produced by parsing.AddHeadingAnchors.
func BuildPageWithAnchor(tagPath, slug, anchor string) string {
	return BuildPage(tagPath, slug) + "#" + anchor
}

var RegexEditPage = regexp.MustCompile(`^/wiki/edit/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)$`)

func BuildEditPage(tagPath, slug string) string {
	mustPageParts(tagPath, slug)
	return Url("/wiki/edit/"+tagPath+"/"+slug, nil)
}

var RegexPageHistory = regexp.MustCompile(`^/wiki/history/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)$`)

func BuildPageHistory(tagPath, slug string) string {
	mustPageParts(tagPath, slug)
	return Url("/wiki/history/"+tagPath+"/"+slug, nil)
}

// The version comes first because a numeric slug would otherwise be
// indistinguishable from it.
var RegexPageRevision = regexp.MustCompile(`^/wiki/revision/(?P<version>[0-9]+)/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)$`)

func BuildPageRevision(tagPath, slug string, version int) string {
	mustPageParts(tagPath, slug)
	if version < 1 {
		panic(oops.New(nil, "Invalid revision version (%d), must be >= 1", version))
	}
	return Url("/wiki/revision/"+strconv.Itoa(version)+"/"+tagPath+"/"+slug, nil)
}

var RegexDeletePage = regexp.MustCompile(`^/wiki/delete/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)$`)

func BuildDeletePage(tagPath, slug string) string {
	mustPageParts(tagPath, slug)
	return Url("/wiki/delete/"+tagPath+"/"+slug, nil)
}

var RegexExportPage = regexp.MustCompile(`^/wiki/export/(?P<tagpath>` + tagPathPattern + `)/(?P<slug>` + slugPattern + `)\.md$`)

func BuildExportPage(tagPath, slug string) string {
	mustPageParts(tagPath, slug)
	return Url("/wiki/export/"+tagPath+"/"+slug+".md", nil)
}

/*
* Ideas
 */

var RegexIdeasBoard = regexp.MustCompile(`^/ideas/?$`)

func BuildIdeasBoard() string {
	return Url("/ideas", nil)
}

var RegexIdeasList = regexp.MustCompile(`^/ideas/list$`)

func BuildIdeasList(status, category, sort string) string {
	return Url("/ideas/list", []Q{
		{"status", status},
		{"category", category},
		{"sort", sort},
	})
}

/*
* API
 */

var RegexApiWiki = regexp.MustCompile(`^/api/wiki$`)

func BuildApiWiki() string {
	return Url("/api/wiki", nil)
}

func BuildApiWikiPage(tagPath, slug string) string {
	return Url("/api/wiki", []Q{{"tagPath", tagPath}, {"slug", slug}})
}

var RegexApiWikiRecent = regexp.MustCompile(`^/api/wiki/recent$`)

func BuildApiWikiRecent(tagPath string, limit int) string {
	return Url("/api/wiki/recent", []Q{{"tagPath", tagPath}, {"limit", strconv.Itoa(limit)}})
}

var RegexApiWikiByIDs = regexp.MustCompile(`^/api/wiki/byids$`)

func BuildApiWikiByIDs(ids []string) string {
	return Url("/api/wiki/byids", []Q{{"ids", strings.Join(ids, ",")}})
}

var RegexApiWikiByID = regexp.MustCompile(`^/api/wiki/(?P<id>` + uuidPattern + `)$`)

func BuildApiWikiByID(id string) string {
	return Url("/api/wiki/"+id, nil)
}

var RegexApiWikiRevisions = regexp.MustCompile(`^/api/wiki/(?P<id>` + uuidPattern + `)/revisions$`)

func BuildApiWikiRevisions(id string) string {
	return Url("/api/wiki/"+id+"/revisions", nil)
}

var RegexApiUserSearch = regexp.MustCompile(`^/api/users/search$`)

func BuildApiUserSearch(q string) string {
	return Url("/api/users/search", []Q{{"q", q}})
}

var RegexApiUpload = regexp.MustCompile(`^/api/upload$`)

func BuildApiUpload() string {
	return Url("/api/upload", nil)
}

var RegexApiPrice = regexp.MustCompile(`^/api/prices/(?P<address>[a-z0-9_]+)$`)

func BuildApiPrice(address string) string {
	return Url("/api/prices/"+address, nil)
}

var RegexApiPriceLive = regexp.MustCompile(`^/api/prices/(?P<address>[a-z0-9_]+)/live$`)

func BuildApiPriceLive(address string) string {
	return Url("/api/prices/"+address+"/live", nil)
}

/*
* Assets
 */

var RegexPublic = regexp.MustCompile("^" + StaticPath + "/.+$")

func BuildPublic(filepath string) string {
	if filepath == "" {
		panic(oops.New(nil, "Attempted to build a /public url with no path"))
	}
	return StaticUrl(filepath, nil)
}

var RegexChromaCSS = regexp.MustCompile(`^/chroma\.css$`)

func BuildChromaCSS() string {
	return Url("/chroma.css", nil)
}
