package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// ModerationService holds the privileged operations: caption visibility,
// caption deletion and the admin read views.
//
// The superadmin flag is re-read from the store on every call. A session
// proves who the caller is, not what they may do right now.
type ModerationService struct {
	profiles repository.ProfileRepository
	captions repository.CaptionRepository
	stats    repository.StatsRepository
	logger   *slog.Logger
}

func NewModerationService(
	profiles repository.ProfileRepository,
	captions repository.CaptionRepository,
	stats repository.StatsRepository,
	logger *slog.Logger,
) *ModerationService {
	return &ModerationService{profiles: profiles, captions: captions, stats: stats, logger: logger}
}

// requireSuperadmin fails with Unauthenticated for a nil session and with
// NotAuthorized when the caller has no profile or is not a superadmin.
func (s *ModerationService) requireSuperadmin(ctx context.Context, sess *auth.Session) (*model.Profile, error) {
	if sess == nil {
		return nil, apperror.Unauthenticated(apperror.MsgNotAuthenticated)
	}

	p, err := s.profiles.GetProfile(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotAuthorized()
		}
		return nil, storeError(err)
	}
	if !p.IsSuperadmin {
		s.logger.Warn("moderation attempt without privilege", slog.String("profile_id", p.ID))
		return nil, apperror.NotAuthorized()
	}
	return p, nil
}

// SetVisibility marks a caption public or private.
func (s *ModerationService) SetVisibility(ctx context.Context, sess *auth.Session, captionID string, isPublic bool) error {
	admin, err := s.requireSuperadmin(ctx, sess)
	if err != nil {
		return err
	}

	if err := s.captions.SetCaptionPublic(ctx, captionID, isPublic); err != nil {
		s.logger.Error("failed to update caption visibility",
			slog.String("caption_id", captionID),
			slog.String("error", err.Error()),
		)
		return storeError(err)
	}

	s.logger.Info("caption visibility changed",
		slog.String("caption_id", captionID),
		slog.Bool("is_public", isPublic),
		slog.String("by", admin.ID),
	)
	return nil
}

// Delete removes a caption outright. There is no soft delete.
func (s *ModerationService) Delete(ctx context.Context, sess *auth.Session, captionID string) error {
	admin, err := s.requireSuperadmin(ctx, sess)
	if err != nil {
		return err
	}

	if err := s.captions.DeleteCaption(ctx, captionID); err != nil {
		s.logger.Error("failed to delete caption",
			slog.String("caption_id", captionID),
			slog.String("error", err.Error()),
		)
		return storeError(err)
	}

	s.logger.Info("caption deleted", slog.String("caption_id", captionID), slog.String("by", admin.ID))
	return nil
}

// Dashboard returns the headline counts plus the most recent captions and users.
func (s *ModerationService) Dashboard(ctx context.Context, sess *auth.Session) (*model.Dashboard, error) {
	if _, err := s.requireSuperadmin(ctx, sess); err != nil {
		return nil, err
	}

	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	captions, err := s.captions.ListCaptions(ctx, repository.ListOptions{Limit: RecentLimit})
	if err != nil {
		return nil, storeError(err)
	}
	users, err := s.profiles.ListProfiles(ctx, repository.ListOptions{Limit: RecentLimit})
	if err != nil {
		return nil, storeError(err)
	}

	return &model.Dashboard{Totals: *totals, RecentCaptions: captions, RecentUsers: users}, nil
}

// Users lists up to AdminListLimit profiles with their caption and vote counts.
func (s *ModerationService) Users(ctx context.Context, sess *auth.Session) ([]model.UserActivity, error) {
	if _, err := s.requireSuperadmin(ctx, sess); err != nil {
		return nil, err
	}

	profiles, err := s.profiles.ListProfiles(ctx, repository.ListOptions{Limit: AdminListLimit})
	if err != nil {
		return nil, storeError(err)
	}
	captionCounts, err := s.stats.CaptionCountsByProfile(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	voteCounts, err := s.stats.VoteCountsByProfile(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	out := make([]model.UserActivity, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, model.UserActivity{
			Profile:      p,
			DisplayName:  p.DisplayName(),
			Role:         p.Role(),
			CaptionCount: captionCounts[p.ID],
			VoteCount:    voteCounts[p.ID],
		})
	}
	return out, nil
}

// Captions lists up to AdminListLimit captions, public or not, newest first.
func (s *ModerationService) Captions(ctx context.Context, sess *auth.Session) ([]model.Caption, error) {
	if _, err := s.requireSuperadmin(ctx, sess); err != nil {
		return nil, err
	}

	captions, err := s.captions.ListCaptions(ctx, repository.ListOptions{Limit: AdminListLimit})
	if err != nil {
		return nil, storeError(err)
	}
	return captions, nil
}
