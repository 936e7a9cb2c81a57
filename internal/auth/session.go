// Package auth resolves the caller's identity from an access token issued by
// the hosted identity provider.
//
// IDENTITY FLOW OVERVIEW:
// 1. The browser signs in with the hosted auth service (Supabase GoTrue)
// 2. The client sends the resulting access token as "Authorization: Bearer"
//    or in the "sb-access-token" cookie
// 3. OptionalSession resolves the token into a *Session through a Verifier
//    and stores it in the request context
// 4. Handlers pass the session (possibly nil) into the services, and each
//    service decides what an absent session means for its operation
//
// The middleware never rejects a request. "Not logged in" has operation
// specific wording ("Not authenticated" vs "You must be logged in to vote"),
// so that decision belongs to the service layer.
package auth

import (
	"context"
	"errors"
)

// Session is a resolved identity. A nil *Session means unauthenticated.
type Session struct {
	UserID      string
	Email       string
	Metadata    map[string]any
	AccessToken string
}

// ErrNoToken is returned when a request carries no access token at all.
var ErrNoToken = errors.New("auth: no access token")

// Verifier turns an access token into a Session.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session stored by OptionalSession, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// Token returns the bearer token, or "" for a nil session.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}
