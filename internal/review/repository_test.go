package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

func newMockRepository(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")
	t.Cleanup(func() { db.Close() })

	repo := NewSQLRepository(sqlx.NewDb(db, "sqlmock"), time.Second, loggy.NewNoopLogger())
	return repo, mock
}

func strPtr(s string) *string { return &s }

var reviewRowColumns = []string{"id", "code", "language", "description", "review", "created_at"}

func TestCreateReview(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	review := &Review{
		Code:     "def f(): pass",
		Language: strPtr("python"),
		Review:   strPtr("Looks fine"),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reviews \(code,language,description,review\) VALUES \(\?,\?,\?,\?\) RETURNING id`).
		WithArgs("def f(): pass", "python", nil, "Looks fine").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT .+ FROM reviews WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(reviewRowColumns).
			AddRow(7, "def f(): pass", "python", nil, "Looks fine", createdAt))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateReview(context.Background(), review))
	assert.Equal(t, int64(7), review.ID)
	assert.Equal(t, createdAt, review.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewStorageError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reviews").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateReview(context.Background(), &Review{Code: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing create review query")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReviews(t *testing.T) {
	repo, mock := newMockRepository(t)
	newer := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	t.Run("newest first", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM reviews ORDER BY created_at DESC, id DESC`).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns).
				AddRow(2, "b", "go", nil, "ok", newer).
				AddRow(1, "a", nil, "ctx", nil, older))
		mock.ExpectCommit()

		reviews, err := repo.ListReviews(context.Background())
		require.NoError(t, err)
		require.Len(t, reviews, 2)

		assert.Equal(t, int64(2), reviews[0].ID)
		assert.Equal(t, "go", *reviews[0].Language)
		assert.Nil(t, reviews[0].Description)
		assert.Equal(t, int64(1), reviews[1].ID)
		assert.Nil(t, reviews[1].Language)
		assert.Nil(t, reviews[1].Review)
		assert.False(t, reviews[0].CreatedAt.Before(reviews[1].CreatedAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM reviews`).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns))
		mock.ExpectCommit()

		reviews, err := repo.ListReviews(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, reviews)
		assert.Empty(t, reviews)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetReview(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM reviews WHERE id = \?`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns).
				AddRow(3, "x", "", "why", "LGTM", createdAt))
		mock.ExpectCommit()

		review, err := repo.GetReview(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), review.ID)
		assert.Equal(t, "", *review.Language)
		assert.Equal(t, "why", *review.Description)
		assert.Equal(t, "LGTM", *review.Review)
		assert.Equal(t, createdAt, review.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM reviews WHERE id = \?`).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns))
		mock.ExpectRollback()

		_, err := repo.GetReview(context.Background(), 99)
		require.ErrorIs(t, err, ErrReviewNotFound)
		assert.Equal(t, "review not found with ID: 99", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteReview(t *testing.T) {
	repo, mock := newMockRepository(t)

	t.Run("deleted", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reviews WHERE id = \?`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.DeleteReview(context.Background(), 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second delete is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reviews WHERE id = \?`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteReview(context.Background(), 5)
		assert.ErrorIs(t, err, ErrReviewNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM reviews`).
			WillReturnError(errors.New("database is locked"))
		mock.ExpectRollback()

		err := repo.DeleteReview(context.Background(), 5)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrReviewNotFound)
		assert.Contains(t, err.Error(), "executing delete review query")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPlaceholderFormatFollowsDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(sqlx.NewDb(db, "postgres"), 0, loggy.NewNoopLogger())
	query, _, err := repo.sb.Delete("reviews").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM reviews WHERE id = $1", query)
}
