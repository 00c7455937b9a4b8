package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/infrastructure/auth"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// CallerContextKey is the context key for the authenticated caller.
	CallerContextKey ContextKey = "caller"
)

// Auth verifies the bearer token and puts the claims on the request context.
// Tokens are issued by the external auth service; this service only verifies.
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CallerContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role. Must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := CallerFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "insufficient permissions", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerFromContext extracts the authenticated caller from context.
func CallerFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(CallerContextKey).(*auth.Claims)
	return claims, ok
}
