package fakeapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

// Role constants define the supported token roles.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type contextKey string

const contextKeyRole contextKey = "role"

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// requireBearer rejects requests without a valid HS256 token signed with
// secret. The token role is stored in the request context.
func requireBearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" {
				writeMessage(w, http.StatusUnauthorized, "Token de acceso requerido")
				return
			}

			c := &claims{}
			token, err := jwt.ParseWithClaims(tok, c, func(_ *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				writeMessage(w, http.StatusUnauthorized, "Token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyRole, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

// requireWriter lets viewers read but not modify. It must be chained after
// requireBearer.
func requireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(contextKeyRole).(string)
		if r.Method != http.MethodGet && role == RoleViewer {
			writeMessage(w, http.StatusForbidden, "No tiene permisos para modificar este recurso")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit answers 429 once the shared budget is spent.
func rateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				writeMessage(w, http.StatusTooManyRequests, "Demasiadas solicitudes")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SignToken issues an HS256 token for role, as the backend's login would.
func SignToken(secret, role string, c jwt.RegisteredClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims{RegisteredClaims: c, Role: role}).SignedString([]byte(secret))
}
