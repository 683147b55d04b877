package auth

import (
	"errors"
	"net/http"

	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/rs/zerolog"
)

// Middleware rejects requests without a valid bearer token with 401 and
// stores the verified identity in the request context.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(BearerToken(r.Header.Get("Authorization")))
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("authentication failed")
				switch {
				case errors.Is(err, ErrNoToken):
					httpx.RespondError(w, r, http.StatusUnauthorized, "unauthorized", "No token provided")
				case errors.Is(err, ErrTokenExpired):
					httpx.RespondError(w, r, http.StatusUnauthorized, "token_expired", "Token expired")
				default:
					httpx.RespondError(w, r, http.StatusUnauthorized, "invalid_token", "Invalid token")
				}
				return
			}

			ctx := WithIdentity(r.Context(), id)
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user", id.UserID)
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
