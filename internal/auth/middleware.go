package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// CookieName is the cookie the browser client stores its access token in.
const CookieName = "sb-access-token"

// OptionalSession resolves the caller's session if a valid token is present,
// but never blocks the request. Handlers read the result with
// SessionFromContext and hand it to the services.
//
// Token lookup order:
//  1. Authorization: Bearer <token>
//  2. the sb-access-token cookie
func OptionalSession(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				sess, err := v.Verify(r.Context(), token)
				if err != nil {
					logger.Debug("ignoring invalid access token", "error", err)
				} else {
					r = r.WithContext(WithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
