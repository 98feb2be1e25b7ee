package website

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/radixwiki/wiki/src/auth"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/logging"
	"github.com/radixwiki/wiki/src/oops"
	"github.com/radixwiki/wiki/src/perf"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else if recoveredErr, ok := recovered.(error); ok {
					err = oops.New(recoveredErr, "Recovered from panic")
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, err)
			}
		}()

		return h(c)
	}
}

func trackRequestPerf(perfCollector *perf.PerfCollector) func(Handler) Handler {
	return func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Perf = perf.MakeNewRequestPerf(c.Route, c.Req.Method, c.Req.URL.Path)
			c.PerfCollector = perfCollector
			defer func() {
				c.Perf.EndRequest()
				log := logging.Info()
				blockStack := make([]time.Time, 0)
				for i, block := range c.Perf.Blocks {
					for len(blockStack) > 0 && block.End.After(blockStack[len(blockStack)-1]) {
						blockStack = blockStack[:len(blockStack)-1]
					}
					log.Str(fmt.Sprintf("[%4.d] At %9.2fms", i, c.Perf.MsFromStart(&block)), fmt.Sprintf("%*.s[%s] %s (%.4fms)", len(blockStack)*2, "", block.Category, block.Description, block.DurationMs()))
					blockStack = append(blockStack, block.End)
				}
				log.Msg(fmt.Sprintf("Served [%s] %s in %.4fms", c.Perf.Method, c.Perf.Path, float64(c.Perf.End.Sub(c.Perf.Start).Nanoseconds())/1000/1000))
				if perfCollector != nil {
					perfCollector.SubmitRun(c.Perf)
				}
			}()

			return h(c)
		}
	}
}

// loadCommonData identifies the user from their login token and makes sure
// the browser has a CSRF cookie. A missing, expired or forged token just
// means an anonymous request.
func loadCommonData(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		b := c.Perf.StartBlock("MIDDLEWARE", "Load common website data")
		{
			claims, err := c.Services.Verifier.VerifyRequest(c.Req)
			if err == nil {
				user, err := getCurrentUser(c, claims)
				if err != nil {
					b.End()
					return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get current user"))
				}
				c.CurrentUser = user
			} else if !errors.Is(err, auth.ErrNoToken) {
				c.Logger.Debug().Err(err).Msg("ignoring bad login token")
			}

			if cookie, err := c.Req.Cookie(auth.CSRFCookieName); err == nil && cookie.Value != "" {
				c.CSRFToken = cookie.Value
			}
		}
		b.End()

		newToken := c.CSRFToken == ""
		if newToken {
			c.CSRFToken = auth.MakeCSRFToken()
		}

		res := h(c)
		if newToken {
			res.SetCookie(auth.NewCSRFCookie(c.CSRFToken, config.Config.Auth.CookieSecure))
		}
		return res
	}
}

func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return Unauthorized(c)
		}

		return h(c)
	}
}

func apiNeedsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if c.CurrentUser == nil {
			return apiError(c, http.StatusUnauthorized, NewSafeError(nil, "You need to sign in first."))
		}

		return h(c)
	}
}

// csrfMiddleware checks the double-submitted token: the form field or the
// X-CSRF-Token header must match the CSRF cookie. Requests authenticated by
// a bearer token carry no ambient credentials and skip the check.
func csrfMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		if isBearerRequest(c.Req) {
			return h(c)
		}

		submitted := c.Req.Header.Get("X-CSRF-Token")
		if submitted == "" {
			if strings.HasPrefix(c.Req.Header.Get("Content-Type"), "multipart/form-data") {
				c.Req.ParseMultipartForm(maxMultipartMemory)
			} else {
				c.Req.ParseForm()
			}
			submitted = c.Req.Form.Get(auth.CSRFFieldName)
		}

		var cookieToken string
		if cookie, err := c.Req.Cookie(auth.CSRFCookieName); err == nil {
			cookieToken = cookie.Value
		}

		if !auth.CSRFTokensMatch(cookieToken, submitted) {
			logger := c.Logger.Warn()
			if c.CurrentUser != nil {
				logger = logger.Str("userId", c.CurrentUser.ID.String())
			}
			logger.Msg("request failed CSRF validation - potential attack?")

			if isApiRequest(c.Req) {
				return apiError(c, http.StatusForbidden, NewSafeError(nil, "The request could not be verified. Reload the page and try again."))
			}
			return statusCard(c, http.StatusForbidden, "Request expired", "The form could not be verified. Go back, reload the page and try again.", "", "")
		}

		return h(c)
	}
}

func isBearerRequest(r *http.Request) bool {
	scheme, _, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	return ok && strings.EqualFold(scheme, "Bearer")
}

func isApiRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		ev := c.Logger.Error().Timestamp().Stack().Str("Requested", c.FullUrl()).Err(err)
		var safe *SafeError
		if errors.As(err, &safe) && safe.Wrapped != nil {
			ev = ev.AnErr("cause", safe.Wrapped)
		}
		ev.Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
