package service

import (
	"context"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// Identity is the caller as the header bar shows them.
type Identity struct {
	UserID      string         `json:"userId"`
	Email       string         `json:"email"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	DisplayName string         `json:"displayName"`
	Profile     *model.Profile `json:"profile"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Me resolves the session's identity and profile.
func (s *ProfileService) Me(ctx context.Context, sess *auth.Session) (*Identity, error) {
	if sess == nil {
		return nil, apperror.Unauthenticated(apperror.MsgNotAuthenticated)
	}

	profile, err := loadProfile(ctx, s.profiles, sess)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:      sess.UserID,
		Email:       sess.Email,
		Metadata:    sess.Metadata,
		DisplayName: displayName(sess, profile),
		Profile:     profile,
	}, nil
}

// displayName picks the provider's full_name, then the profile's first and
// last name, then an email (profile first, session second).
func displayName(sess *auth.Session, p *model.Profile) string {
	if name, ok := sess.Metadata["full_name"].(string); ok && name != "" {
		return name
	}
	if p.FirstName != "" && p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	if p.Email == "" && sess.Email != "" {
		return sess.Email
	}
	return p.DisplayName()
}
