// Package wikiurl builds every URL the site links to, and holds the regexes
// the router matches them with. Each Build function has a Regex next to it.
package wikiurl

import (
	"net/url"
	"regexp"

	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/oops"
)

const StaticPath = "/public"

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	result := config.Config.BaseUrl + "/" + trim(path)
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

func StaticUrl(path string, query []Q) string {
	return Url(StaticPath+"/"+trim(path), query)
}

func trim(path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path[1:]
	}
	return path
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		if q.Value == "" {
			continue
		}
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}

const (
	tagPathPattern = `[a-z0-9-]+(?:/[a-z0-9-]+)*`
	slugPattern    = `[a-z0-9]+(?:-[a-z0-9]+)*`
	uuidPattern    = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`
)

var reValidTagPath = regexp.MustCompile("^" + tagPathPattern + "$")
var reValidSlug = regexp.MustCompile("^" + slugPattern + "$")

// Tag paths and slugs are validated before they reach the database, so a
// bad one here is a programming error.
func mustPageParts(tagPath, slug string) {
	if !reValidTagPath.MatchString(tagPath) {
		panic(oops.New(nil, "invalid tag path %q", tagPath))
	}
	if !reValidSlug.MatchString(slug) {
		panic(oops.New(nil, "invalid slug %q", slug))
	}
}
