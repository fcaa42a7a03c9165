// Package auth supplies the bearer token attached to backend calls.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/gosuda/agrotrack/internal/apperr"
)

const (
	msgMissingToken = "Debe iniciar sesión para acceder a este recurso."
	msgExpiredToken = "Sesión expirada. Por favor, inicie sesión nuevamente."
)

// ErrNotJWT is returned by Expiry for opaque tokens.
var ErrNotJWT = errors.New("auth: token is not a JWT") //nolint:gochecknoglobals // sentinel error

// TokenSource serves a fixed bearer token. When the token is a JWT carrying an
// exp claim, an expired token is refused locally so the request is never sent.
type TokenSource struct {
	token string
	now   func() time.Time
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// TokenSourceOption configures optional TokenSource parameters.
type TokenSourceOption func(*TokenSource)

// WithClock overrides the time source used for the expiry check.
func WithClock(now func() time.Time) TokenSourceOption {
	return func(s *TokenSource) {
		s.now = now
	}
}

// NewTokenSource returns a TokenSource for the given raw token.
func NewTokenSource(token string, opts ...TokenSourceOption) *TokenSource {
	s := &TokenSource{
		token: strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token implements oauth2.TokenSource. Failures are *apperr.Error values of
// the authentication kind.
func (s *TokenSource) Token() (*oauth2.Token, error) {
	if s.token == "" {
		return nil, apperr.NewAuthentication(msgMissingToken)
	}

	tok := &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}

	exp, err := Expiry(s.token)
	if err != nil {
		// Opaque tokens are the backend's business.
		return tok, nil //nolint:nilerr // opaque token
	}
	if !exp.IsZero() {
		if !s.now().Before(exp) {
			return nil, apperr.NewAuthentication(msgExpiredToken)
		}
		tok.Expiry = exp
	}
	return tok, nil
}

// Expiry reads the exp claim of a JWT without verifying its signature. The
// zero time is returned when the claim is absent.
func Expiry(token string) (time.Time, error) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, ErrNotJWT
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("auth.Expiry: %w: %w", ErrNotJWT, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}
