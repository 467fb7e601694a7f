package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/teamup-users/internal/models"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for storing token claims in context
	ClaimsContextKey contextKey = "claims"
)

// TokenVerifier is satisfied by *TokenManager.
type TokenVerifier interface {
	Verify(token string) (*models.TokenClaims, error)
}

// BearerAuth requires an "Authorization: Bearer <token>" header and stores the
// verified claims in the request context.
func BearerAuth(tv TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := tv.Verify(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, tokenErrorMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// SessionCookieAuth reads the SSO session token from cookieName.
func SessionCookieAuth(tv TokenVerifier, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w, "Not authenticated")
				return
			}

			claims, err := tv.Verify(cookie.Value)
			if err != nil {
				unauthorized(w, tokenErrorMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaimsFromContext extracts token claims from request context
func GetClaimsFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func tokenErrorMessage(err error) string {
	if errors.Is(err, models.ErrTokenExpired) {
		return "Token has expired"
	}
	return "Could not validate credentials"
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	pkghttp.WriteUnauthorized(w, message)
}
