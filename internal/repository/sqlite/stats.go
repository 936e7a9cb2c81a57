package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

var _ repository.StatsRepository = (*DB)(nil)

// Totals counts rows in each of the four main tables.
func (db *DB) Totals(ctx context.Context) (*model.Totals, error) {
	var t model.Totals
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM captions),
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM caption_votes),
			(SELECT COUNT(*) FROM images)
	`).Scan(&t.Captions, &t.Users, &t.Votes, &t.Images)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting totals: %w", err)
	}
	return &t, nil
}

func (db *DB) CaptionCountsByProfile(ctx context.Context) (map[string]int, error) {
	return db.countBy(ctx,
		`SELECT profile_id, COUNT(*) FROM captions WHERE profile_id IS NOT NULL GROUP BY profile_id`)
}

func (db *DB) VoteCountsByProfile(ctx context.Context) (map[string]int, error) {
	return db.countBy(ctx,
		`SELECT profile_id, COUNT(*) FROM caption_votes GROUP BY profile_id`)
}

func (db *DB) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting by profile: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scanning count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating counts: %w", err)
	}
	return counts, nil
}
