package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

var _ repository.VoteRepository = (*DB)(nil)

// InsertVote records one vote. A second vote by the same profile on the same
// caption fails the UNIQUE(caption_id, profile_id) constraint, which comes
// back as a repository.ConstraintError with Code UniqueViolation.
func (db *DB) InsertVote(ctx context.Context, v *model.CaptionVote) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO caption_votes (caption_id, profile_id, vote_value, created_datetime_utc)
		 VALUES (?, ?, ?, ?)`,
		v.CaptionID, v.ProfileID, v.VoteValue, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting vote: %w", mapError(err))
	}
	return nil
}

// VotedCaptionIDs returns the ids of every caption the profile has voted on.
func (db *DB) VotedCaptionIDs(ctx context.Context, profileID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT caption_id FROM caption_votes WHERE profile_id = ?`, profileID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing votes for %s: %w", profileID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning vote: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating votes: %w", err)
	}
	return ids, nil
}
