package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"petconnect/internal/token"
)

// Typed key to avoid context collisions.
type contextKey string

// ClaimsContextKey carries the verified *token.Claims for the request.
const ClaimsContextKey = contextKey("claims")

// ClaimsFromContext extracts the verified session claims, if any.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims)
	return claims, ok
}

// Auth verifies the bearer token and embeds its claims into the request
// context. Verification is signature and expiry only; claims are the snapshot
// taken at login and are not re-checked against the credential store.
func Auth(jwtSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "authorization header missing")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid authorization header")
				return
			}
			claims, err := token.Verify(parts[1], jwtSecret)
			if err != nil {
				logger.Debug().Err(err).Msg("token verification failed")
				unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
