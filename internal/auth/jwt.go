package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Audience is the "aud" claim the identity provider puts on user tokens.
const Audience = "authenticated"

// TokenService verifies provider-issued access tokens locally with the
// project's shared HS256 secret, without a network round trip.
//
// It can also mint tokens with the same shape. The seeder uses that to hand
// out development tokens, and tests use it to build sessions.
type TokenService struct {
	secret []byte
	issuer string
}

var _ Verifier = (*TokenService)(nil)

// NewTokenService creates a TokenService. issuer may be empty, in which case
// the "iss" claim is not checked.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// claims mirrors the provider's access token payload. "sub" is the user id.
type claims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	Role         string         `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Generate signs a token for userID that expires after d.
func (s *TokenService) Generate(userID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: email,
		Role:  Audience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a token. Passing jwt.WithValidMethods prevents
// algorithm confusion: a token signed with "none" or RS256 is rejected.
func (s *TokenService) Verify(_ context.Context, tokenStr string) (*Session, error) {
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Session{
		UserID:      c.Subject,
		Email:       c.Email,
		Metadata:    c.UserMetadata,
		AccessToken: tokenStr,
	}, nil
}
