package website

import (
	"net/url"
	"strings"

	"github.com/radixwiki/wiki/src/auth"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/wikidata"
)

// getCurrentUser records the token's holder in the database, so pages can
// show and search authors, and returns the stored user.
func getCurrentUser(c *RequestContext, claims *auth.Claims) (*models.User, error) {
	tokenUser, err := claims.User()
	if err != nil {
		return nil, nil
	}

	user, err := wikidata.UpsertUser(c, c.Conn, tokenUser)
	if err != nil {
		return nil, oops.New(err, "failed to save user from token")
	}
	return user, nil
}

func addCORSHeaders(c *RequestContext, res *ResponseData) {
	parsed, err := url.Parse(config.Config.BaseUrl)
	if err != nil {
		c.Logger.Error().Str("Config.BaseUrl", config.Config.BaseUrl).Msg("Config.BaseUrl cannot be parsed. Skipping CORS headers")
		return
	}
	origin := ""
	origins, found := c.Req.Header["Origin"]
	if found {
		origin = origins[0]
	}
	if origin != "" && strings.HasSuffix(origin, parsed.Host) {
		res.Header().Add("Access-Control-Allow-Origin", origin)
		res.Header().Add("Access-Control-Allow-Credentials", "true")
		res.Header().Add("Vary", "Origin")
	}
}

func corsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		addCORSHeaders(c, &res)
		return res
	}
}
