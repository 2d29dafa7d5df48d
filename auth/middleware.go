package auth

import (
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/user/blog-api-go/apperror"
)

const bearerPrefix = "Bearer "

// Middleware returns the bearer-token authentication middleware. It extracts
// the Authorization header, verifies the token against the access secret and
// attaches the decoded claims to the request context. No database lookup
// happens here: the claims are trusted as-is until the token expires, and the
// liveness of the account is only re-checked at refresh time.
func Middleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewUnauthorizedError("token not provided", nil))
				return
			}

			// Exact, case-sensitive scheme match.
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				WriteError(w, r, apperror.NewUnauthorizedError("token not provided", nil))
				return
			}

			tokenString := strings.TrimPrefix(authHeader, bearerPrefix)
			claims, err := tokens.VerifyAccess(tokenString)
			if err != nil {
				zap.L().Warn("access token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				WriteError(w, r, apperror.NewUnauthorizedError("invalid or expired token", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles returns a middleware that allows the request only when the
// authenticated identity's role is one of the given roles. With no roles the
// middleware allows unconditionally. It must run after Middleware: it never
// verifies tokens itself, only reads claims from the context.
func RequireRoles(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role == "" || !slices.Contains(roles, claims.Role) {
				WriteError(w, r, apperror.NewForbiddenError("insufficient permissions", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
