package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

var _ repository.ThemeRepository = (*DB)(nil)

// CreateTheme inserts a catalog entry with an explicit id. The catalog is
// read-only to the application; this exists for the seeder and tests.
func (db *DB) CreateTheme(ctx context.Context, t *model.HumorTheme) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO humor_themes (id, name, description) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Description,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating theme %d: %w", t.ID, mapError(err))
	}
	return nil
}

// ListThemes returns the whole catalog ordered by id ascending.
func (db *DB) ListThemes(ctx context.Context) ([]model.HumorTheme, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, created_datetime_utc FROM humor_themes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing themes: %w", err)
	}
	defer rows.Close()

	themes := []model.HumorTheme{}
	for rows.Next() {
		var t model.HumorTheme
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning theme: %w", err)
		}
		themes = append(themes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating themes: %w", err)
	}
	return themes, nil
}
