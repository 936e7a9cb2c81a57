package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/ratelimit"
)

// RateLimit rejects requests with 429 once the caller's bucket is empty.
// Logged-in callers are keyed by user id, anonymous ones by client address.
// It must run after auth.OptionalSession to see the session.
func RateLimit(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "Too many requests. Please slow down.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		return "user:" + sess.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
