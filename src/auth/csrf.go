package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"
	"net/http"
	"time"
)

const (
	CSRFCookieName = "wiki_csrf"
	CSRFFieldName  = "csrf_token"
	csrfDuration   = 24 * time.Hour
)

func MakeCSRFToken() string {
	tokenBytes := make([]byte, 30)
	_, err := io.ReadFull(rand.Reader, tokenBytes)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes)
}

func NewCSRFCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:    CSRFCookieName,
		Value:   token,
		Path:    "/",
		Expires: time.Now().Add(csrfDuration),

		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CSRFTokensMatch compares the cookie token with the one submitted in a form.
func CSRFTokensMatch(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}
