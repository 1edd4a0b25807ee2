package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/socialsense/social-sense-backend/internal/apperr"
	"github.com/socialsense/social-sense-backend/internal/models"
)

type ctxKey int

const userKey ctxKey = 0

// TokenVerifier maps a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// UserLoader resolves a user id to the stored user record.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth validates the Authorization bearer token, loads the matching
// user, and injects it into the request context. A token whose user no
// longer exists is rejected.
func RequireAuth(tokens TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				apperr.Write(w, apperr.New(apperr.Unauthorized, "not authenticated"))
				return
			}

			userID, err := tokens.Subject(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				apperr.Write(w, err)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				apperr.Write(w, err)
				return
			}
			if user == nil {
				apperr.Write(w, apperr.New(apperr.Unauthorized, "could not validate credentials"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying user as the authenticated caller.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the authenticated user injected by RequireAuth, or nil
// on an unprotected route.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
