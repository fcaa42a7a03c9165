package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/auth"
	"github.com/gosuda/agrotrack/internal/httpclient"
)

func signToken(t *testing.T, exp *time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "vendedor-1", Issuer: "agro-backend"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-very-long-and-secure"))
	require.NoError(t, err)
	return signed
}

func TestTokenSource_ValidJWT(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	raw := signToken(t, &exp)

	ts := auth.NewTokenSource(raw, auth.WithClock(func() time.Time { return now }))
	tok, err := ts.Token()

	require.NoError(t, err)
	assert.Equal(t, raw, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
	assert.True(t, tok.Expiry.Equal(exp.Truncate(time.Second)))
}

func TestTokenSource_ExpiredJWT(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(-time.Minute)
	ts := auth.NewTokenSource(signToken(t, &exp), auth.WithClock(func() time.Time { return now }))

	_, err := ts.Token()

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindAuthentication, appErr.Kind())
	assert.Equal(t, 401, appErr.Status())
}

func TestTokenSource_JWTWithoutExp(t *testing.T) {
	t.Parallel()

	raw := signToken(t, nil)
	tok, err := auth.NewTokenSource(raw).Token()

	require.NoError(t, err)
	assert.True(t, tok.Expiry.IsZero())
}

func TestTokenSource_OpaqueTokenPassesThrough(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"abc123", "Bearer abc123", "a.b.c"} {
		tok, err := auth.NewTokenSource(raw).Token()
		require.NoError(t, err, raw)
		assert.NotEmpty(t, tok.AccessToken)
	}
}

func TestTokenSource_EmptyToken(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTokenSource("  ").Token()
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := auth.Expiry(signToken(t, &exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	_, err = auth.Expiry("opaque")
	assert.True(t, errors.Is(err, auth.ErrNotJWT))
}

func TestTokenSource_ExpiredTokenNeverReachesBackend(t *testing.T) {
	t.Parallel()

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exp := time.Now().Add(-time.Hour)
	c := httpclient.New(srv.URL, httpclient.WithTokenSource(auth.NewTokenSource(signToken(t, &exp))))

	_, err := c.Do(t.Context(), httpclient.Request{Path: "/seller"})

	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Zero(t, hits)
}
