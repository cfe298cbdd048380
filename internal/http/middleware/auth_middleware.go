package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidora/vidora-backend/internal/domain"
	"github.com/vidora/vidora-backend/internal/http/response"
	"github.com/vidora/vidora-backend/internal/observability"
	"github.com/vidora/vidora-backend/internal/security"
)

type contextKey string

const UserContextKey contextKey = "user"

// Authenticator resolves a raw access token into the signed-in user.
type Authenticator interface {
	Authenticate(ctx context.Context, rawAccessToken string) (*domain.User, error)
}

// AuthMiddleware guards a route. The access token is read from the
// accessToken cookie first, then from the Authorization bearer header.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, source := accessTokenFromRequest(r)
			user, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				outcome := "invalid"
				if raw == "" {
					outcome = "missing"
				}
				observability.RecordAccessTokenValidation(r.Context(), outcome, source)
				response.FromError(w, r, err)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid", source)
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves the viewer when a valid token is
// present and lets the request through anonymously otherwise.
func OptionalAuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, source := accessTokenFromRequest(r)
			if raw != "" {
				if user, err := auth.Authenticate(r.Context(), raw); err == nil {
					observability.RecordAccessTokenValidation(r.Context(), "valid", source)
					r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*domain.User)
	return u, ok
}

func accessTokenFromRequest(r *http.Request) (raw, source string) {
	raw = security.GetCookie(r, security.AccessTokenCookie)
	source = "cookie"
	if raw == "" {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			raw = strings.TrimSpace(auth[7:])
			source = "bearer"
		}
	}
	if raw == "" {
		source = "none"
	}
	return raw, source
}
