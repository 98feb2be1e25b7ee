package wikiurl

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/radixwiki/wiki/src/config"
	"github.com/stretchr/testify/assert"
)

func withBaseUrl(t *testing.T, base string) {
	old := config.Config.BaseUrl
	config.Config.BaseUrl = base
	t.Cleanup(func() { config.Config.BaseUrl = old })
}

func TestUrl(t *testing.T) {
	withBaseUrl(t, "http://wiki.test")

	t.Run("no query", func(t *testing.T) {
		assert.Equal(t, "http://wiki.test/test/foo", Url("/test/foo", nil))
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/test/foo", []Q{{"bar", "baz"}, {"zig??", "zig & zag!!"}})
		assert.Equal(t, "http://wiki.test/test/foo?bar=baz&zig%3F%3F=zig+%26+zag%21%21", result)
	})
	t.Run("empty query values dropped", func(t *testing.T) {
		assert.Equal(t, "http://wiki.test/ideas/list?sort=title", BuildIdeasList("", "", "title"))
	})
}

func TestHomepage(t *testing.T) {
	AssertRegexMatch(t, BuildHomepage(), RegexHomepage, nil)
}

func TestLogin(t *testing.T) {
	old := config.Config.Auth.LoginUrl
	defer func() { config.Config.Auth.LoginUrl = old }()
	config.Config.Auth.LoginUrl = "https://login.test/start"

	assert.Equal(t, "https://login.test/start?return=http%3A%2F%2Fwiki.test%2Fwiki", BuildLogin("http://wiki.test/wiki"))
	assert.Equal(t, "https://login.test/start", BuildLogin(""))
	AssertRegexMatch(t, BuildLogout("/wiki"), RegexLogout, nil)
}

func TestWikiIndex(t *testing.T) {
	AssertRegexMatch(t, BuildWikiIndex(), RegexWikiIndex, nil)
	AssertRegexMatch(t, "/wiki/", RegexWikiIndex, nil)
}

func TestCategory(t *testing.T) {
	AssertRegexMatch(t, BuildCategory("contents", 1), RegexCategory, map[string]string{"tagpath": "contents"})
	AssertRegexMatch(t, BuildCategory("contents/tech", 3), RegexCategory, map[string]string{"tagpath": "contents/tech"})
	assert.Contains(t, BuildCategory("contents/tech", 3), "page=3")
	assert.NotContains(t, BuildCategory("contents/tech", 1), "page=")
	assert.Panics(t, func() { BuildCategory("contents", 0) })
	assert.Panics(t, func() { BuildCategory("Contents//tech", 1) })
}

func TestNewPage(t *testing.T) {
	AssertRegexMatch(t, BuildNewPage("ideas"), RegexNewPage, nil)
	AssertRegexMatch(t, BuildNewPage(""), RegexNewPage, nil)
}

func TestPageRoutes(t *testing.T) {
	params := map[string]string{"tagpath": "contents/tech", "slug": "what-is-radix"}
	copyParams := func() map[string]string {
		result := make(map[string]string, len(params))
		for k, v := range params {
			result[k] = v
		}
		return result
	}

	AssertRegexMatch(t, BuildPage("contents/tech", "what-is-radix"), RegexPage, copyParams())
	AssertRegexMatch(t, BuildEditPage("contents/tech", "what-is-radix"), RegexEditPage, copyParams())
	AssertRegexMatch(t, BuildPageHistory("contents/tech", "what-is-radix"), RegexPageHistory, copyParams())
	AssertRegexMatch(t, BuildDeletePage("contents/tech", "what-is-radix"), RegexDeletePage, copyParams())
	AssertRegexMatch(t, BuildExportPage("contents/tech", "what-is-radix"), RegexExportPage, copyParams())

	revisionParams := copyParams()
	revisionParams["version"] = "4"
	AssertRegexMatch(t, BuildPageRevision("contents/tech", "what-is-radix", 4), RegexPageRevision, revisionParams)

	assert.Contains(t, BuildPageWithAnchor("contents", "intro", "getting-started"), "/wiki/p/contents/intro#getting-started")

	assert.Panics(t, func() { BuildPage("contents", "Bad Slug") })
	assert.Panics(t, func() { BuildPage("", "slug") })
	assert.Panics(t, func() { BuildPageRevision("contents", "intro", 0) })
}

func TestNumericSlugRevision(t *testing.T) {
	AssertRegexMatch(t, BuildPageRevision("contents", "2024", 2), RegexPageRevision, map[string]string{
		"version": "2",
		"tagpath": "contents",
		"slug":    "2024",
	})
	AssertRegexMatch(t, BuildPageHistory("contents", "2024"), RegexPageHistory, map[string]string{"slug": "2024"})
}

func TestIdeas(t *testing.T) {
	AssertRegexMatch(t, BuildIdeasBoard(), RegexIdeasBoard, nil)
	AssertRegexMatch(t, BuildIdeasList("approved", "dev", "newest"), RegexIdeasList, nil)
}

func TestApi(t *testing.T) {
	id := "3f2b8a34-1c9d-4e0a-9b43-2a1c7f5e6d10"

	AssertRegexMatch(t, BuildApiWiki(), RegexApiWiki, nil)
	AssertRegexMatch(t, BuildApiWikiPage("contents", "intro"), RegexApiWiki, nil)
	AssertRegexMatch(t, BuildApiWikiRecent("contents", 5), RegexApiWikiRecent, nil)
	AssertRegexMatch(t, BuildApiWikiByIDs([]string{id, id}), RegexApiWikiByIDs, nil)
	AssertRegexMatch(t, BuildApiWikiByID(id), RegexApiWikiByID, map[string]string{"id": id})
	AssertRegexMatch(t, BuildApiWikiRevisions(id), RegexApiWikiRevisions, map[string]string{"id": id})
	AssertRegexMatch(t, BuildApiUserSearch("ali"), RegexApiUserSearch, nil)
	AssertRegexMatch(t, BuildApiUpload(), RegexApiUpload, nil)

	assert.Contains(t, BuildApiWikiByIDs([]string{"a", "b"}), "ids=a%2Cb")
	assert.False(t, RegexApiWikiByID.MatchString("/api/wiki/recent"))
}

func TestPrices(t *testing.T) {
	addr := "resource_rdx1tknxxxxxxxxxradxrdxxxxxxxxx009923554798xxxxxxxxxradxrd"
	AssertRegexMatch(t, BuildApiPrice(addr), RegexApiPrice, map[string]string{"address": addr})
	AssertRegexMatch(t, BuildApiPriceLive(addr), RegexApiPriceLive, map[string]string{"address": addr})
	assert.False(t, RegexApiPrice.MatchString("/api/prices/"+addr+"/live"))
}

func TestPublic(t *testing.T) {
	AssertRegexMatch(t, BuildPublic("wiki.css"), RegexPublic, nil)
	AssertRegexMatch(t, BuildPublic("/js/editor.js"), RegexPublic, nil)
	assert.Panics(t, func() { BuildPublic("") })
	AssertRegexMatch(t, BuildChromaCSS(), RegexChromaCSS, nil)
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	t.Helper()

	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	if !assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String()) {
		return
	}

	if paramsToVerify != nil {
		subexpNames := regex.SubexpNames()
		for i, matchedValue := range match {
			paramName := subexpNames[i]
			expectedValue, ok := paramsToVerify[paramName]
			if ok {
				assert.Equalf(t, expectedValue, matchedValue, "Param mismatch for [%s]", paramName)
				delete(paramsToVerify, paramName)
			}
		}
		if len(paramsToVerify) > 0 {
			unmatchedParams := make([]string, 0, len(paramsToVerify))
			for paramName := range paramsToVerify {
				unmatchedParams = append(unmatchedParams, paramName)
			}
			assert.Fail(t, "Expected match groups not found", unmatchedParams)
		}
	}
}
