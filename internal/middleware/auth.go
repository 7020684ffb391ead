// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"net/http"
	"strings"

	"github.com/lumora/playshare/internal/auth"
)

// TokenValidator validates a bearer token and returns its claims.
// Satisfied by *auth.JWTService.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Authenticate is a middleware that validates the Authorization bearer token
// and stores the user ID and role in the request context.
// Requests without a valid token are rejected with 401.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := SetUserID(r.Context(), claims.Subject)
			ctx = SetUserRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole is a middleware that rejects requests whose authenticated role
// does not match. Must be placed after Authenticate in the chain.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserRole(r.Context()) != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
