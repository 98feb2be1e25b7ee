package website

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/radixwiki/wiki/src/templates"
	"github.com/radixwiki/wiki/src/wikiurl"
)

func FourOhFour(c *RequestContext) ResponseData {
	var res ResponseData
	res.StatusCode = http.StatusNotFound

	if isApiRequest(c.Req) {
		res.WriteJson(apiErrorBody{Error: "Not found"}, c.Perf)
	} else if c.Req.Header["Accept"] != nil && strings.Contains(c.Req.Header["Accept"][0], "text/html") {
		templateData := struct {
			templates.BaseData
			Wanted string
		}{
			BaseData: getBaseData(c, "Page not found", nil),
			Wanted:   c.FullUrl(),
		}
		res.MustWriteTemplate("404.html", templateData, c.Perf)
	} else {
		res.Write([]byte("Not Found"))
	}
	return res
}

type statusData struct {
	templates.BaseData
	StatusCode  int
	Heading     string
	Message     string
	ActionUrl   string
	ActionLabel string
}

// statusCard is a full page explaining why the request can't go ahead.
func statusCard(c *RequestContext, status int, heading, message, actionUrl, actionLabel string) ResponseData {
	res := ResponseData{StatusCode: status}
	res.MustWriteTemplate("status.html", statusData{
		BaseData:    getBaseData(c, heading, nil),
		StatusCode:  status,
		Heading:     heading,
		Message:     message,
		ActionUrl:   actionUrl,
		ActionLabel: actionLabel,
	}, c.Perf)
	return res
}

func Unauthorized(c *RequestContext) ResponseData {
	return statusCard(c, http.StatusUnauthorized,
		"Sign in to continue",
		"Connect your wallet to create and edit pages.",
		wikiurl.BuildLogin(c.FullUrl()), "Connect wallet",
	)
}

func Forbidden(c *RequestContext, message string) ResponseData {
	return statusCard(c, http.StatusForbidden,
		"You can't edit this page",
		message,
		wikiurl.BuildWikiIndex(), "Back to the wiki",
	)
}

type errorData struct {
	templates.BaseData
	Messages []string
}

// safeMessages collects the messages of any SafeErrors, which are the only
// error text shown to users.
func safeMessages(errs []error) []string {
	var result []string
	for _, err := range errs {
		var safe *SafeError
		if errors.As(err, &safe) {
			result = append(result, safe.Msg)
		}
	}
	return result
}

// A SafeError can be used to wrap another error and explicitly provide
// an error message that is safe to show to a user. This allows the original
// error to easily be logged and for servers to consistently return errors
// in a standard format, without having to worry about leaking sensitive
// info (assuming you use the right middleware!).
type SafeError struct {
	Wrapped error
	Msg     string
}

func NewSafeError(err error, msg string, args ...interface{}) error {
	return &SafeError{
		Wrapped: err,
		Msg:     fmt.Sprintf(msg, args...),
	}
}

func (s *SafeError) Error() string {
	return s.Msg
}

func (s *SafeError) Unwrap() error {
	return s.Wrapped
}

type apiErrorBody struct {
	Error string `json:"error"`
}

// apiError responds with {"error": ...}. Only SafeError messages reach the
// client; anything else is logged and reported generically.
func apiError(c *RequestContext, status int, err error) ResponseData {
	msg := http.StatusText(status)
	var safe *SafeError
	if errors.As(err, &safe) {
		msg = safe.Msg
	}

	res := ResponseData{StatusCode: status}
	if status >= 500 {
		res.Errors = append(res.Errors, err)
	}
	res.WriteJson(apiErrorBody{Error: msg}, c.Perf)
	return res
}
