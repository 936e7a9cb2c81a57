package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

// compile-time check that *DB implements repository.ProfileRepository
var _ repository.ProfileRepository = (*DB)(nil)

const profileColumns = `id, email, first_name, last_name, is_superadmin, is_in_study, created_datetime_utc`

// UpsertProfile inserts or updates a profile keyed by its identity id.
//
// Profiles belong to the provisioning flow, not to this service. The seeder
// and tests use this to stand in for it. ON CONFLICT keeps the existing row
// (and its created timestamp) and only refreshes the descriptive fields.
func (db *DB) UpsertProfile(ctx context.Context, p *model.Profile) error {
	if p.ID == "" {
		return apperror.InvalidInput("id", "profile id is required")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO profiles (id, email, first_name, last_name, is_superadmin, is_in_study, created_datetime_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email         = excluded.email,
		   first_name    = excluded.first_name,
		   last_name     = excluded.last_name,
		   is_superadmin = excluded.is_superadmin,
		   is_in_study   = excluded.is_in_study`,
		p.ID, p.Email, p.FirstName, p.LastName, p.IsSuperadmin, p.IsInStudy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting profile %s: %w", p.ID, mapError(err))
	}
	return nil
}

// GetProfile retrieves a profile by identity id.
// Returns apperror.ErrNotFound if no profile exists with that id.
func (db *DB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.IsSuperadmin, &p.IsInStudy, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, err)
	}

	return &p, nil
}

// ListProfiles returns profiles newest first.
func (db *DB) ListProfiles(ctx context.Context, opts repository.ListOptions) ([]model.Profile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_datetime_utc DESC LIMIT ? OFFSET ?`,
		limitOrAll(opts.Limit), opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.IsSuperadmin, &p.IsInStudy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating profiles: %w", err)
	}
	return profiles, nil
}
