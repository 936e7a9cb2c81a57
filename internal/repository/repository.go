// Package repository is the Data Accessor contract: a typed query/mutation
// surface over the relational store.
//
// Implementations must signal three outcomes distinctly:
//   - no rows:              an error matching apperror.ErrNotFound
//   - unique violation:     a *ConstraintError with Code == UniqueViolation
//   - anything else:        any other error, passed up opaque
//
// The services never inspect driver errors directly; they only use
// IsUniqueViolation and errors.Is(err, apperror.ErrNotFound).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/humor-hub/internal/model"
)

// UniqueViolation is the stable SQLSTATE code for a unique-constraint violation.
const UniqueViolation = "23505"

// ConstraintError reports a store-side constraint violation.
type ConstraintError struct {
	Code       string // SQLSTATE-style code, e.g. UniqueViolation
	Constraint string // constraint or column list, when the driver reports it
	Err        error  // underlying driver error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint %s violated (%s): %v", e.Constraint, e.Code, e.Err)
	}
	return fmt.Sprintf("constraint violated (%s): %v", e.Code, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether err is, or wraps, a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce) && ce.Code == UniqueViolation
}

type ListOptions struct {
	Limit  int
	Offset int
}

type ThemeRepository interface {
	ListThemes(ctx context.Context) ([]model.HumorTheme, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context, opts ListOptions) ([]model.Profile, error)
}

type CaptionRepository interface {
	GetCaption(ctx context.Context, id string) (*model.Caption, error)
	// ListPublicCaptions returns public captions newest first, skipping excludeIDs.
	ListPublicCaptions(ctx context.Context, excludeIDs []string, opts ListOptions) ([]model.Caption, error)
	ListCaptions(ctx context.Context, opts ListOptions) ([]model.Caption, error)
	SetCaptionPublic(ctx context.Context, id string, isPublic bool) error
	DeleteCaption(ctx context.Context, id string) error
}

type VoteRepository interface {
	// InsertVote fails with a unique violation when (caption, profile) already has a vote.
	InsertVote(ctx context.Context, vote *model.CaptionVote) error
	VotedCaptionIDs(ctx context.Context, profileID string) ([]string, error)
}

type StatsRepository interface {
	Totals(ctx context.Context) (*model.Totals, error)
	// CaptionCountsByProfile and VoteCountsByProfile map profile id -> row count.
	CaptionCountsByProfile(ctx context.Context) (map[string]int, error)
	VoteCountsByProfile(ctx context.Context) (map[string]int, error)
}

// Store is everything the services need. Both sqlite.DB and postgres.DB implement it.
type Store interface {
	ThemeRepository
	ProfileRepository
	CaptionRepository
	VoteRepository
	StatsRepository
	Close() error
}
