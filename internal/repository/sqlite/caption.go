package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

var _ repository.CaptionRepository = (*DB)(nil)

const captionColumns = `id, content, created_datetime_utc, is_public, is_featured, like_count, COALESCE(profile_id, '')`

// CreateCaption inserts a caption. In production captions are written by the
// captioning service; here it backs the seeder and tests.
//
// An empty ID gets a fresh xid; a zero CreatedAt gets time.Now().
func (db *DB) CreateCaption(ctx context.Context, c *model.Caption, imageID string) error {
	if c.ID == "" {
		c.ID = xid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	var image any
	if imageID != "" {
		image = imageID
	}
	var profile any
	if c.ProfileID != "" {
		profile = c.ProfileID
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO captions (id, content, image_id, profile_id, is_public, is_featured, like_count, created_datetime_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Content, image, profile, c.IsPublic, c.IsFeatured, c.LikeCount, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating caption: %w", mapError(err))
	}
	return nil
}

// GetCaption returns apperror.ErrNotFound if no caption has the given id.
func (db *DB) GetCaption(ctx context.Context, id string) (*model.Caption, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+captionColumns+` FROM captions WHERE id = ?`, id)

	c, err := scanCaption(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("caption", id)
		}
		return nil, fmt.Errorf("sqlite: getting caption %s: %w", id, err)
	}
	return c, nil
}

// ListPublicCaptions returns public captions, newest first, skipping excludeIDs.
func (db *DB) ListPublicCaptions(ctx context.Context, excludeIDs []string, opts repository.ListOptions) ([]model.Caption, error) {
	query := `SELECT ` + captionColumns + ` FROM captions WHERE is_public = 1`
	args := make([]any, 0, len(excludeIDs)+2)

	if len(excludeIDs) > 0 {
		query += ` AND id NOT IN (` + placeholders(len(excludeIDs)) + `)`
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	query += ` ORDER BY created_datetime_utc DESC LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(opts.Limit), opts.Offset)

	return db.queryCaptions(ctx, query, args...)
}

// ListCaptions returns all captions regardless of visibility, newest first.
func (db *DB) ListCaptions(ctx context.Context, opts repository.ListOptions) ([]model.Caption, error) {
	return db.queryCaptions(ctx,
		`SELECT `+captionColumns+` FROM captions ORDER BY created_datetime_utc DESC LIMIT ? OFFSET ?`,
		limitOrAll(opts.Limit), opts.Offset,
	)
}

// SetCaptionPublic updates the visibility flag. Missing ids are a no-op,
// matching an UPDATE ... WHERE that matches zero rows.
func (db *DB) SetCaptionPublic(ctx context.Context, id string, isPublic bool) error {
	_, err := db.conn.ExecContext(ctx, `UPDATE captions SET is_public = ? WHERE id = ?`, isPublic, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating caption %s: %w", id, mapError(err))
	}
	return nil
}

// DeleteCaption removes the caption unconditionally. Its votes cascade.
func (db *DB) DeleteCaption(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM captions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting caption %s: %w", id, mapError(err))
	}
	return nil
}

// CreateImage records an uploaded image row.
func (db *DB) CreateImage(ctx context.Context, url, profileID string) (string, error) {
	id := xid.New().String()
	var profile any
	if profileID != "" {
		profile = profileID
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO images (id, url, profile_id, is_common_use, created_datetime_utc) VALUES (?, ?, ?, 0, ?)`,
		id, url, profile, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: creating image: %w", mapError(err))
	}
	return id, nil
}

func (db *DB) queryCaptions(ctx context.Context, query string, args ...any) ([]model.Caption, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing captions: %w", err)
	}
	defer rows.Close()

	captions := []model.Caption{}
	for rows.Next() {
		c, err := scanCaption(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning caption: %w", err)
		}
		captions = append(captions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating captions: %w", err)
	}
	return captions, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCaption(s scanner) (*model.Caption, error) {
	var c model.Caption
	if err := s.Scan(&c.ID, &c.Content, &c.CreatedAt, &c.IsPublic, &c.IsFeatured, &c.LikeCount, &c.ProfileID); err != nil {
		return nil, err
	}
	return &c, nil
}

// limitOrAll turns a zero limit into SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
