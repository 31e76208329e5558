package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// contextKey is the type of context keys owned by this package.
type contextKey string

// UserClaimsKey is the context key for verified token claims.
const UserClaimsKey = contextKey("userClaims")

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// Middleware rejects requests without a valid bearer token and passes the
// verified claims down via the request context.
func Middleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok && isWebSocketUpgrade(r) {
				// Browsers cannot set headers on websocket handshakes.
				tokenStr = r.URL.Query().Get("access_token")
				ok = tokenStr != ""
			}
			if !ok {
				unauthorized(w, "Missing auth token")
				return
			}

			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				if errors.Is(err, ErrTokenExpired) {
					unauthorized(w, "Expired auth token")
					return
				}
				unauthorized(w, "Invalid auth token")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	http.Error(w, msg, http.StatusUnauthorized)
}
