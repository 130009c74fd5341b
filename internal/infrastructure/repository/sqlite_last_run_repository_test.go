package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/niklvrr/reviewpulse/internal/infrastructure/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteRepo(t *testing.T) *SQLiteLastRunRepository {
	t.Helper()
	conn, err := db.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "last_run.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLiteLastRunRepository(conn, zap.NewNop())
}

func TestSQLiteLastRun_Missing(t *testing.T) {
	repo := newSQLiteRepo(t)

	_, err := repo.GetLastRun(context.Background(), "weekly-review")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteLastRun_SaveAndOverwrite(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveLastRun(ctx, "weekly-review", first))

	got, err := repo.GetLastRun(ctx, "weekly-review")
	require.NoError(t, err)
	assert.True(t, first.Equal(got))

	second := first.Add(7 * 24 * time.Hour)
	require.NoError(t, repo.SaveLastRun(ctx, "weekly-review", second))

	got, err = repo.GetLastRun(ctx, "weekly-review")
	require.NoError(t, err)
	assert.True(t, second.Equal(got))

	// другие отчеты не затронуты
	_, err = repo.GetLastRun(ctx, "daily-review")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteLastRun_NegativeTimestampRejected(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	err := repo.SaveLastRun(ctx, "old", time.Unix(-10, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.GetLastRun(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteLastRun_EmptyName(t *testing.T) {
	repo := newSQLiteRepo(t)

	err := repo.SaveLastRun(context.Background(), "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSQLiteLastRun_SubSecondPrecisionDropped(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	at := time.Date(2024, 5, 1, 10, 0, 0, 999_000_000, time.UTC)
	require.NoError(t, repo.SaveLastRun(ctx, "r", at))

	got, err := repo.GetLastRun(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, at.Truncate(time.Second).Unix(), got.Unix())
}

func TestSQLiteLastRun_Ping(t *testing.T) {
	repo := newSQLiteRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
