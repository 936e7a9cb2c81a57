package service

import (
	"context"
	"log/slog"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/auth"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// VoteService records votes and builds the "captions needing a vote" feed.
//
// ONE VOTE PER USER:
// The store's UNIQUE(caption_id, profile_id) constraint is the only thing
// that enforces it. The service never checks first and then inserts; it
// inserts and translates the unique-violation signal into AlreadyVoted.
// A check-then-insert would race between two tabs anyway.
type VoteService struct {
	profiles repository.ProfileRepository
	captions repository.CaptionRepository
	votes    repository.VoteRepository
	logger   *slog.Logger
}

func NewVoteService(
	profiles repository.ProfileRepository,
	captions repository.CaptionRepository,
	votes repository.VoteRepository,
	logger *slog.Logger,
) *VoteService {
	return &VoteService{profiles: profiles, captions: captions, votes: votes, logger: logger}
}

// Vote records voteValue (+1 or -1 by convention, not enforced) on captionID
// for the session's profile.
func (s *VoteService) Vote(ctx context.Context, sess *auth.Session, captionID string, voteValue int) error {
	if sess == nil {
		return apperror.Unauthenticated(apperror.MsgLoginToVote)
	}

	profile, err := loadProfile(ctx, s.profiles, sess)
	if err != nil {
		return err
	}

	vote := &model.CaptionVote{
		CaptionID: captionID,
		ProfileID: profile.ID,
		VoteValue: voteValue,
	}
	if err := s.votes.InsertVote(ctx, vote); err != nil {
		if repository.IsUniqueViolation(err) {
			s.logger.Info("duplicate vote rejected",
				slog.String("caption_id", captionID),
				slog.String("profile_id", profile.ID),
			)
			return apperror.AlreadyVoted()
		}
		s.logger.Error("failed to record vote",
			slog.String("caption_id", captionID),
			slog.String("error", err.Error()),
		)
		return storeError(err)
	}

	s.logger.Info("vote recorded",
		slog.String("caption_id", captionID),
		slog.String("profile_id", profile.ID),
		slog.Int("value", voteValue),
	)
	return nil
}

// Feed returns up to FeedLimit public captions, newest first, that the
// caller has not voted on yet. It is a fresh query every time.
//
// Without a session, or with a session that has no profile, nothing is
// excluded and VotedCount is zero.
func (s *VoteService) Feed(ctx context.Context, sess *auth.Session) (*model.RateFeed, error) {
	voted := []string{}

	if sess != nil {
		profile, err := loadProfile(ctx, s.profiles, sess)
		switch {
		case err == nil:
			voted, err = s.votes.VotedCaptionIDs(ctx, profile.ID)
			if err != nil {
				return nil, storeError(err)
			}
		case !isProfileNotFound(err):
			return nil, err
		}
	}

	captions, err := s.captions.ListPublicCaptions(ctx, voted, repository.ListOptions{Limit: FeedLimit})
	if err != nil {
		s.logger.Error("failed to load caption feed", slog.String("error", err.Error()))
		return nil, storeError(err)
	}

	return &model.RateFeed{Captions: captions, VotedCount: len(voted)}, nil
}
