package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

type userCtxKey struct{}

// AccessVerifier checks an access token and returns its claims.
type AccessVerifier interface {
	VerifyAccess(token string) (auth.Claims, error)
}

// UserResolver loads the user identified by verified claims.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user placed by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// RequireAuth rejects requests that do not carry a valid access token. The
// token is read from the accessToken cookie or the Authorization header, and
// the claimed user must still exist.
func RequireAuth(verifier AccessVerifier, users UserResolver, unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				logging.FromContext(ctx).Warn("access token rejected", "error", err)
				unauthorized(w, r)
				return
			}

			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				logging.FromContext(ctx).Warn("access token for unknown user", "userId", claims.UserID)
				unauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user.Sanitized())))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
