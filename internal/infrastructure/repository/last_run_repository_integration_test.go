//go:build integration

package repository

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/niklvrr/reviewpulse/internal/infrastructure/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startPostgres поднимает контейнер и возвращает url с sslmode=disable
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dbURL, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	parsedURL, err := url.Parse(dbURL)
	require.NoError(t, err)
	query := parsedURL.Query()
	query.Set("sslmode", "disable")
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String()
}

func migrationsSource(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	// internal/infrastructure/repository -> корень модуля
	return fmt.Sprintf("file://%s", filepath.Join(wd, "..", "..", "..", "migrations"))
}

func TestLastRunRepository_Postgres(t *testing.T) {
	dbURL := startPostgres(t)
	ctx := context.Background()

	pool, err := db.NewDatabase(ctx, dbURL, migrationsSource(t), zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	repo := NewLastRunRepository(pool, zap.NewNop())

	_, err = repo.GetLastRun(ctx, "weekly-review")
	assert.ErrorIs(t, err, ErrNotFound)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveLastRun(ctx, "weekly-review", first))

	got, err := repo.GetLastRun(ctx, "weekly-review")
	require.NoError(t, err)
	assert.True(t, first.Equal(got))

	second := first.Add(24 * time.Hour)
	require.NoError(t, repo.SaveLastRun(ctx, "weekly-review", second))

	got, err = repo.GetLastRun(ctx, "weekly-review")
	require.NoError(t, err)
	assert.True(t, second.Equal(got))
}

func TestLastRunRepository_NegativeTimestampRejected(t *testing.T) {
	dbURL := startPostgres(t)
	ctx := context.Background()

	pool, err := db.NewDatabase(ctx, dbURL, migrationsSource(t), zap.NewNop())
	require.NoError(t, err)
	defer pool.Close()

	repo := NewLastRunRepository(pool, zap.NewNop())

	err = repo.SaveLastRun(ctx, "old", time.Unix(-10, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
