package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go"
)

// GoTrueVerifier asks the hosted auth service who a token belongs to.
// It is used when no JWT secret is configured, and it also catches tokens
// the provider has revoked before expiry.
type GoTrueVerifier struct {
	client gotrue.Client
}

var _ Verifier = (*GoTrueVerifier)(nil)

// NewGoTrueVerifier builds a verifier for the project at projectRef. When
// baseURL is non-empty it replaces the default https://<ref>.supabase.co/auth/v1.
func NewGoTrueVerifier(projectRef, anonKey, baseURL string) *GoTrueVerifier {
	client := gotrue.New(projectRef, anonKey)
	if baseURL != "" {
		client = client.WithCustomGoTrueURL(baseURL)
	}
	return &GoTrueVerifier{client: client}
}

// Verify calls GET /user with the token. gotrue-go has no context-aware API,
// so ctx is not propagated.
func (v *GoTrueVerifier) Verify(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	user, err := v.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("auth: resolving user: %w", err)
	}

	return &Session{
		UserID:      user.ID.String(),
		Email:       user.Email,
		Metadata:    user.UserMetadata,
		AccessToken: token,
	}, nil
}
