// Package postgres implements the repository interfaces against the hosted
// Postgres store that owns the production data.
//
// The schema is managed by the hosting platform, so there are no migrations
// here. Queries cast uuid and nullable text columns so rows scan straight into
// the model structs via sqlx's db tags.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB is a sqlx connection pool with repository methods.
type DB struct {
	conn *sqlx.DB
}

// New connects to Postgres and verifies the connection.
func New(dsn string) (*DB, error) {
	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connecting: %w", err)
	}
	return &DB{conn: conn}, nil
}

// NewFromDB wraps an existing *sqlx.DB. Tests use it with go-sqlmock.
func NewFromDB(conn *sqlx.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

const captionColumns = `id::text AS id, COALESCE(content, '') AS content, created_datetime_utc,
	is_public, is_featured, like_count, COALESCE(profile_id::text, '') AS profile_id`

const profileColumns = `id::text AS id, COALESCE(email, '') AS email, COALESCE(first_name, '') AS first_name,
	COALESCE(last_name, '') AS last_name, is_superadmin, is_in_study, created_datetime_utc`

// =========================================================================
// THEMES
// =========================================================================

func (db *DB) ListThemes(ctx context.Context) ([]model.HumorTheme, error) {
	themes := []model.HumorTheme{}
	err := db.conn.SelectContext(ctx, &themes,
		`SELECT id, name, description, created_datetime_utc FROM humor_themes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing themes: %w", err)
	}
	return themes, nil
}

// =========================================================================
// PROFILES
// =========================================================================

func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := db.conn.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("postgres: getting profile %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	profiles := []model.Profile{}
	err := db.conn.SelectContext(ctx, &profiles,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_datetime_utc DESC LIMIT $1 OFFSET $2`,
		limitOrAll(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing profiles: %w", err)
	}
	return profiles, nil
}

// =========================================================================
// CAPTIONS
// =========================================================================

func (db *DB) GetCaption(ctx context.Context, id string) (*model.Caption, error) {
	var c model.Caption
	err := db.conn.GetContext(ctx, &c, `SELECT `+captionColumns+` FROM captions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("caption", id)
		}
		return nil, fmt.Errorf("postgres: getting caption %s: %w", id, err)
	}
	return &c, nil
}

// ListPublicCaptions passes excludeIDs as one text[] parameter, so the query
// text does not depend on how many captions the caller has voted on.
func (db *DB) ListPublicCaptions(ctx context.Context, excludeIDs []string, opts repository.ListOptions) ([]model.Caption, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	captions := []model.Caption{}
	err := db.conn.SelectContext(ctx, &captions,
		`SELECT `+captionColumns+` FROM captions
		 WHERE is_public = true AND NOT (id::text = ANY($1))
		 ORDER BY created_datetime_utc DESC LIMIT $2 OFFSET $3`,
		pq.Array(excludeIDs), limitOrAll(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing public captions: %w", err)
	}
	return captions, nil
}

func (db *DB) ListCaptions(ctx context.Context, opts repository.ListOptions) ([]model.Caption, error) {
	captions := []model.Caption{}
	err := db.conn.SelectContext(ctx, &captions,
		`SELECT `+captionColumns+` FROM captions ORDER BY created_datetime_utc DESC LIMIT $1 OFFSET $2`,
		limitOrAll(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing captions: %w", err)
	}
	return captions, nil
}

func (db *DB) SetCaptionPublic(ctx context.Context, id string, isPublic bool) error {
	if _, err := db.conn.ExecContext(ctx, `UPDATE captions SET is_public = $1 WHERE id = $2`, isPublic, id); err != nil {
		return fmt.Errorf("postgres: updating caption %s: %w", id, mapError(err))
	}
	return nil
}

func (db *DB) DeleteCaption(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM captions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: deleting caption %s: %w", id, mapError(err))
	}
	return nil
}

// =========================================================================
// VOTES
// =========================================================================

// InsertVote relies on the store's unique (caption_id, profile_id) constraint.
// like_count is maintained store-side.
func (db *DB) InsertVote(ctx context.Context, v *model.CaptionVote) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO caption_votes (caption_id, profile_id, vote_value, created_datetime_utc)
		 VALUES ($1, $2, $3, now())`,
		v.CaptionID, v.ProfileID, v.VoteValue)
	if err != nil {
		return fmt.Errorf("postgres: inserting vote: %w", mapError(err))
	}
	return nil
}

func (db *DB) VotedCaptionIDs(ctx context.Context, profileID string) ([]string, error) {
	ids := []string{}
	err := db.conn.SelectContext(ctx, &ids,
		`SELECT caption_id::text FROM caption_votes WHERE profile_id = $1`, profileID)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing votes for %s: %w", profileID, err)
	}
	return ids, nil
}

// =========================================================================
// STATS
// =========================================================================

func (db *DB) Totals(ctx context.Context) (*model.Totals, error) {
	var row struct {
		Captions int `db:"captions"`
		Users    int `db:"users"`
		Votes    int `db:"votes"`
		Images   int `db:"images"`
	}
	err := db.conn.GetContext(ctx, &row, `
		SELECT
			(SELECT COUNT(*) FROM captions)      AS captions,
			(SELECT COUNT(*) FROM profiles)      AS users,
			(SELECT COUNT(*) FROM caption_votes) AS votes,
			(SELECT COUNT(*) FROM images)        AS images`)
	if err != nil {
		return nil, fmt.Errorf("postgres: counting totals: %w", err)
	}
	return &model.Totals{Captions: row.Captions, Users: row.Users, Votes: row.Votes, Images: row.Images}, nil
}

func (db *DB) CaptionCountsByProfile(ctx context.Context) (map[string]int, error) {
	return db.countBy(ctx,
		`SELECT profile_id::text AS profile_id, COUNT(*) AS n FROM captions
		 WHERE profile_id IS NOT NULL GROUP BY profile_id`)
}

func (db *DB) VoteCountsByProfile(ctx context.Context) (map[string]int, error) {
	return db.countBy(ctx,
		`SELECT profile_id::text AS profile_id, COUNT(*) AS n FROM caption_votes GROUP BY profile_id`)
}

func (db *DB) countBy(ctx context.Context, query string) (map[string]int, error) {
	var rows []struct {
		ProfileID string `db:"profile_id"`
		N         int    `db:"n"`
	}
	if err := db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("postgres: counting by profile: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ProfileID] = r.N
	}
	return counts, nil
}

// mapError converts *pq.Error constraint violations into repository.ConstraintError.
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case repository.UniqueViolation, "23503":
		return &repository.ConstraintError{Code: string(pqErr.Code), Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

// limitOrAll maps a zero limit to NULL, which Postgres treats as LIMIT ALL.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
