package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/humor-hub/internal/apperror"
	"github.com/sakif/humor-hub/internal/model"
	"github.com/sakif/humor-hub/internal/repository"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewFromDB(sqlx.NewDb(mockDB, "postgres")), mock
}

var captionCols = []string{"id", "content", "created_datetime_utc", "is_public", "is_featured", "like_count", "profile_id"}

func TestInsertVote(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO caption_votes`).
		WithArgs("c1", "u1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := db.InsertVote(context.Background(), &model.CaptionVote{CaptionID: "c1", ProfileID: "u1", VoteValue: 1})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertVote_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO caption_votes`).
		WithArgs("c1", "u1", -1).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "caption_votes_caption_id_profile_id_key"})

	err := db.InsertVote(context.Background(), &model.CaptionVote{CaptionID: "c1", ProfileID: "u1", VoteValue: -1})
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))

	var ce *repository.ConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "caption_votes_caption_id_profile_id_key", ce.Constraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertVote_OtherError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO caption_votes`).
		WillReturnError(&pq.Error{Code: "57014", Message: "canceling statement"})

	err := db.InsertVote(context.Background(), &model.CaptionVote{CaptionID: "c1", ProfileID: "u1", VoteValue: 1})
	require.Error(t, err)
	assert.False(t, repository.IsUniqueViolation(err))
}

func TestGetProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "is_superadmin", "is_in_study", "created_datetime_utc"}).
			AddRow("u1", "a@example.com", "Ada", "Lovelace", true, false, now))

	p, err := db.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.DisplayName())
	assert.True(t, p.IsSuperadmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfile_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM profiles`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := db.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListPublicCaptions(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM captions\s+WHERE is_public = true AND NOT \(id::text = ANY\(\$1\)\)`).
		WithArgs(sqlmock.AnyArg(), 20, 0).
		WillReturnRows(sqlmock.NewRows(captionCols).
			AddRow("c2", "newer", now, true, false, 3, "u1").
			AddRow("c1", "older", now.Add(-time.Hour), true, false, 0, ""))

	got, err := db.ListPublicCaptions(context.Background(), []string{"c9"}, repository.ListOptions{Limit: 20})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, 3, got[0].LikeCount)
	assert.Equal(t, "", got[1].ProfileID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListThemes(t *testing.T) {
	db, mock := setupMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, description, created_datetime_utc FROM humor_themes ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_datetime_utc"}).
			AddRow(1, "Sarcasm", "biting", now).
			AddRow(2, "Pun", nil, now))

	got, err := db.ListThemes(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "biting", *got[0].Description)
	assert.Nil(t, got[1].Description)
}

func TestSetCaptionPublicAndDelete(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(`UPDATE captions SET is_public = \$1 WHERE id = \$2`).
		WithArgs(false, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM captions WHERE id = \$1`).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.SetCaptionPublic(context.Background(), "c1", false))
	require.NoError(t, db.DeleteCaption(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalsAndCounts(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"captions", "users", "votes", "images"}).AddRow(10, 4, 25, 6))
	mock.ExpectQuery(`FROM caption_votes GROUP BY profile_id`).
		WillReturnRows(sqlmock.NewRows([]string{"profile_id", "n"}).AddRow("u1", 7).AddRow("u2", 2))

	totals, err := db.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Totals{Captions: 10, Users: 4, Votes: 25, Images: 6}, *totals)

	votes, err := db.VoteCountsByProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"u1": 7, "u2": 2}, votes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
