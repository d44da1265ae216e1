package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/spendtrail/spendtrail/internal/models"
	pkghttp "github.com/spendtrail/spendtrail/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the resolved user in context
	UserContextKey contextKey = "user"
)

// UserFetcher resolves a token's embedded user id to a live credential record.
type UserFetcher interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator validates the bearer access token on every protected route.
// The token is read from the accessToken cookie first, then from the
// Authorization header. Every failure mode (missing token, bad signature,
// expired token, user no longer present) collapses into the same 401 so a
// caller cannot distinguish a valid-looking-but-rejected token from an
// absent one.
func Authenticator(tm *TokenManager, users UserFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "Unauthorized request, failed to verify token")
				return
			}

			claims, err := tm.ValidateToken(tokenString, models.TokenTypeAccess)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized request, failed to verify token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized request, failed to verify token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken returns the bearer token from the accessToken cookie or the
// Authorization header; the cookie takes precedence.
func extractToken(r *http.Request) string {
	if token, err := GetAccessTokenCookie(r); err == nil && token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
