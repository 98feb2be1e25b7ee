package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/models"
)

var (
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are issued by the wallet login service. The subject is the user's
// id.
type Claims struct {
	jwt.RegisteredClaims
	Name         string `json:"name,omitempty"`
	RadixAddress string `json:"radix_address,omitempty"`
	Admin        bool   `json:"admin,omitempty"`
}

// User is the wiki's view of whoever holds the token.
func (c *Claims) User() (models.User, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return models.User{}, ErrInvalidToken
	}
	return models.User{
		ID:           id,
		DisplayName:  strings.TrimSpace(c.Name),
		RadixAddress: strings.TrimSpace(c.RadixAddress),
		IsAdmin:      c.Admin,
	}, nil
}

type Verifier struct {
	secret     []byte
	cookieName string
}

func NewVerifier(secret, cookieName string) *Verifier {
	return &Verifier{secret: []byte(secret), cookieName: cookieName}
}

// Enabled is false when no secret is configured, in which case nobody can
// sign in.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if !v.Enabled() {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithLeeway(30*time.Second))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest reads a bearer token, falling back to the login cookie.
func (v *Verifier) TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
		return "", ErrInvalidToken
	}
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", ErrNoToken
}

// VerifyRequest returns the claims of the request's token. A request with no
// token at all gets ErrNoToken.
func (v *Verifier) VerifyRequest(r *http.Request) (*Claims, error) {
	token, err := v.TokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return v.Verify(token)
}

// Sign issues a token. The login service does this in production; the wiki
// uses it for tests and local development.
func (v *Verifier) Sign(claims Claims, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiresIn))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
