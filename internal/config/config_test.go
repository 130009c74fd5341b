package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("TRACKER_URL", "https://tracker.example.com")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5.0, cfg.Tracker.RPS)
	assert.Equal(t, 1, cfg.Tracker.Burst)
	assert.Equal(t, DriverSQLite, cfg.LastRun.Driver)
	assert.Equal(t, "reviewpulse.db", cfg.LastRun.SQLitePath)
	assert.Equal(t, "reports.yaml", cfg.ReportsConfig)
	assert.Empty(t, cfg.Database.URL)
}

func TestFromEnv_TrackerURLRequired(t *testing.T) {
	t.Setenv("TRACKER_URL", "")

	_, err := fromEnv()
	assert.ErrorIs(t, err, trackerURLEmptyError)
}

func TestFromEnv_PostgresBuildsURL(t *testing.T) {
	t.Setenv("TRACKER_URL", "https://tracker.example.com")
	t.Setenv("LAST_RUN_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_USER", "pulse")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("DATABASE_NAME", "pulse")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://pulse:secret@db:5432/pulse?sslmode=disable", cfg.Database.URL)
}

func TestFromEnv_PostgresKeepsExplicitURL(t *testing.T) {
	t.Setenv("TRACKER_URL", "https://tracker.example.com")
	t.Setenv("LAST_RUN_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "postgres://u:p@host/db")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@host/db", cfg.Database.URL)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("TRACKER_URL", "https://tracker.example.com")

	t.Run("driver", func(t *testing.T) {
		t.Setenv("LAST_RUN_DRIVER", "mysql")
		_, err := fromEnv()
		assert.ErrorIs(t, err, invalidDriverError)
	})

	t.Run("rps", func(t *testing.T) {
		t.Setenv("TRACKER_RPS", "fast")
		_, err := fromEnv()
		assert.ErrorIs(t, err, invalidNumberError)
	})

	t.Run("burst", func(t *testing.T) {
		t.Setenv("TRACKER_BURST", "1.5")
		_, err := fromEnv()
		assert.ErrorIs(t, err, invalidNumberError)
	})
}

func TestReportsPath(t *testing.T) {
	t.Setenv("REPORTS_CONFIG", "")
	path, err := ReportsPath()
	require.NoError(t, err)
	assert.Equal(t, "reports.yaml", path)

	t.Setenv("REPORTS_CONFIG", "/etc/reviewpulse/reports.yaml")
	path, err = ReportsPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/reviewpulse/reports.yaml", path)
}
