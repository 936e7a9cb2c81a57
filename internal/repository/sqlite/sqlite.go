// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE HERE?
// Production data lives in the hosted Postgres store (see repository/postgres).
// This embedded store mirrors that schema so the whole service can run on a
// laptop, and so repository and service tests run against real SQL:
//   - "data/humor-hub.db" → file-based database for local development
//   - ":memory:"          → fresh database per test
//
// The schema reproduces the two store-side rules the application relies on:
//   - UNIQUE(caption_id, profile_id) on caption_votes (one vote per user per caption)
//   - a trigger that maintains captions.like_count as votes arrive
//
// Constraint failures are translated into repository.ConstraintError with the
// same SQLSTATE code Postgres uses, so services see one contract.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/humor-hub/internal/repository"

	// Importing modernc.org/sqlite registers the pure-Go "sqlite" driver with
	// database/sql. We also need its *Error type to read extended result codes.
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// sql.Open() does NOT open a connection; Ping forces one so a bad path or
// permissions issue surfaces here instead of on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection. Pin the pool to one
	// connection so every query sees the same schema and rows.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Votes reference captions
	// and profiles, and deleting a caption must cascade to its votes.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS humor_themes (
			id                   INTEGER PRIMARY KEY,
			name                 TEXT NOT NULL,
			description          TEXT,
			created_datetime_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating humor_themes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id                   TEXT PRIMARY KEY,
			email                TEXT NOT NULL DEFAULT '',
			first_name           TEXT NOT NULL DEFAULT '',
			last_name            TEXT NOT NULL DEFAULT '',
			is_superadmin        BOOLEAN NOT NULL DEFAULT 0,
			is_in_study          BOOLEAN NOT NULL DEFAULT 0,
			created_datetime_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_created ON profiles(created_datetime_utc);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS images (
			id                   TEXT PRIMARY KEY,
			url                  TEXT NOT NULL,
			profile_id           TEXT REFERENCES profiles(id) ON DELETE SET NULL,
			is_common_use        BOOLEAN NOT NULL DEFAULT 0,
			created_datetime_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating images table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS captions (
			id                   TEXT PRIMARY KEY,
			content              TEXT NOT NULL DEFAULT '',
			image_id             TEXT REFERENCES images(id) ON DELETE SET NULL,
			profile_id           TEXT REFERENCES profiles(id) ON DELETE SET NULL,
			is_public            BOOLEAN NOT NULL DEFAULT 0,
			is_featured          BOOLEAN NOT NULL DEFAULT 0,
			like_count           INTEGER NOT NULL DEFAULT 0,
			created_datetime_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_captions_public_created ON captions(is_public, created_datetime_utc);
		CREATE INDEX IF NOT EXISTS idx_captions_profile ON captions(profile_id);
	`)
	if err != nil {
		return fmt.Errorf("creating captions table: %w", err)
	}

	// The UNIQUE pair is the one-vote-per-user rule. It is enforced here and
	// only detected by the application.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS caption_votes (
			caption_id           TEXT NOT NULL REFERENCES captions(id) ON DELETE CASCADE,
			profile_id           TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			vote_value           INTEGER NOT NULL,
			created_datetime_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (caption_id, profile_id)
		);
		CREATE INDEX IF NOT EXISTS idx_caption_votes_profile ON caption_votes(profile_id);
	`)
	if err != nil {
		return fmt.Errorf("creating caption_votes table: %w", err)
	}

	// like_count is server-maintained: it moves by the vote's value, exactly
	// once per accepted vote row.
	_, err = db.conn.Exec(`
		CREATE TRIGGER IF NOT EXISTS trg_caption_votes_like_count
		AFTER INSERT ON caption_votes
		BEGIN
			UPDATE captions SET like_count = like_count + NEW.vote_value WHERE id = NEW.caption_id;
		END;
	`)
	if err != nil {
		return fmt.Errorf("creating like_count trigger: %w", err)
	}

	return nil
}

// mapError translates SQLite constraint failures into repository.ConstraintError.
// Every other error is returned unchanged.
func mapError(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &repository.ConstraintError{
			Code:       repository.UniqueViolation,
			Constraint: constraintColumns(sqliteErr.Error()),
			Err:        err,
		}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &repository.ConstraintError{Code: "23503", Err: err}
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only, when extended result codes are off.
		if strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
			return &repository.ConstraintError{
				Code:       repository.UniqueViolation,
				Constraint: constraintColumns(sqliteErr.Error()),
				Err:        err,
			}
		}
	}
	return err
}

// constraintColumns pulls "caption_votes.caption_id, caption_votes.profile_id"
// out of "UNIQUE constraint failed: caption_votes.caption_id, ... (2067)".
func constraintColumns(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	cols := msg[i+len(marker):]
	if j := strings.LastIndex(cols, " ("); j >= 0 {
		cols = cols[:j]
	}
	return cols
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
