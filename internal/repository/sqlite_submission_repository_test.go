package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/portfolio/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteSubmissionRepository {
	t.Helper()
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteSubmissionRepository(db)
}

func TestSQLiteSubmissionRepository_RoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	in := &model.SubmissionInput{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		Subject:   "Hi",
		Message:   "Hello there, checking in!",
	}
	stored, err := repo.Insert(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "Lee", got.LastName)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "Hi", got.Subject)
	assert.Equal(t, "Hello there, checking in!", got.Message)
	assert.True(t, stored.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteSubmissionRepository_OrderingAndMonotonicTimestamps(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base, base.Add(-time.Minute)}
	repo.now = func() time.Time {
		c := clock[0]
		clock = clock[1:]
		return c
	}

	var ids []int64
	var last time.Time
	for i := 1; i <= 3; i++ {
		s, err := repo.Insert(ctx, sampleInput(i))
		require.NoError(t, err)
		assert.False(t, s.CreatedAt.Before(last), "created_at went backwards")
		last = s.CreatedAt
		ids = append(ids, s.ID)
	}

	rows, total, err := repo.List(ctx, model.SubmissionListOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
}

func TestSQLiteSubmissionRepository_SearchEscapesWildcards(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		_, err := repo.Insert(ctx, sampleInput(i))
		require.NoError(t, err)
	}
	special := sampleInput(5)
	special.Subject = "100% done_now"
	_, err := repo.Insert(ctx, special)
	require.NoError(t, err)

	rows, total, err := repo.List(ctx, model.SubmissionListOptions{Query: "100%"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% done_now", rows[0].Subject)

	rows, total, err = repo.List(ctx, model.SubmissionListOptions{Query: "_"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, rows, 1)

	rows, total, err = repo.List(ctx, model.SubmissionListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rows, 2)
}

func TestSQLiteSubmissionRepository_SearchFoldsNonASCII(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	_, err := repo.Insert(ctx, sampleInput(1))
	require.NoError(t, err)
	in := sampleInput(2)
	in.FirstName = "Émilie"
	in.LastName = "Åström"
	in.Subject = "ΣΥΝΕΡΓΑΣΙΑ"
	_, err = repo.Insert(ctx, in)
	require.NoError(t, err)

	for _, q := range []string{"émilie", "ÉMILIE", "åSTRÖM", "συνεργασια"} {
		rows, total, err := repo.List(ctx, model.SubmissionListOptions{Query: q})
		require.NoError(t, err)
		assert.Equal(t, 1, total, "query %q", q)
		if assert.Len(t, rows, 1, "query %q", q) {
			assert.Equal(t, "Émilie", rows[0].FirstName)
		}
	}
}

func TestSQLiteSubmissionRepository_Delete(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	a, err := repo.Insert(ctx, sampleInput(1))
	require.NoError(t, err)
	b, err := repo.Insert(ctx, sampleInput(2))
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, a.ID+b.ID+100)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, b.ID)
	assert.NoError(t, err)

	c, err := repo.Insert(ctx, sampleInput(3))
	require.NoError(t, err)
	assert.Greater(t, c.ID, b.ID, "AUTOINCREMENT must not reuse ids")
}

func TestSQLiteSubmissionRepository_CountSince(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	clock := []time.Time{base.Add(-time.Hour), base.Add(time.Hour)}
	repo.now = func() time.Time {
		c := clock[0]
		clock = clock[1:]
		return c
	}
	for i := 0; i < 2; i++ {
		_, err := repo.Insert(ctx, sampleInput(i))
		require.NoError(t, err)
	}

	n, err := repo.CountSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteSubmissionRepository_InsertErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO contact_submissions")).
		WillReturnError(errors.New("disk I/O error"))

	repo := NewSQLiteSubmissionRepository(db)
	_, err = repo.Insert(context.Background(), sampleInput(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert submission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSubmissionRepository_DeleteUsesRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contact_submissions WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contact_submissions WHERE id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSQLiteSubmissionRepository(db)
	removed, err := repo.Delete(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSubmissionRepository_FindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM contact_submissions WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "subject", "message", "created_at"}))

	repo := NewSQLiteSubmissionRepository(db)
	_, err = repo.FindByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
