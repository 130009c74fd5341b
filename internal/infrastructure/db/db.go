package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const DefaultMigrationsSource = "file://migrations"

var (
	errDBPathIsEmpty = errors.New("database path is empty")
	errDBInit        = errors.New("database init error")
	errMigration     = errors.New("migration error")
)

// Схема для локального хранилища, повторяет миграцию postgres
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reports_last_run (
    report_name TEXT PRIMARY KEY,
    timestamp   INTEGER NOT NULL CHECK (timestamp >= 0),
    updated_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

func NewDatabase(ctx context.Context, dbUrl, migrationsSource string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if dbUrl == "" {
		return nil, errDBPathIsEmpty
	}
	if migrationsSource == "" {
		migrationsSource = DefaultMigrationsSource
	}

	pool, err := pgxpool.New(ctx, dbUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDBInit, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", errDBInit, err)
	}

	if err := runMigrations(migrationsSource, dbUrl, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func runMigrations(source, dbUrl string, logger *zap.Logger) error {
	mg, err := migrate.New(source, dbUrl)
	if err != nil {
		return fmt.Errorf("%w: init: %w", errMigration, err)
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: version check: %w", errMigration, err)
	}

	if dirty {
		logger.Warn("database is in dirty state, forcing version", zap.Uint("version", version))
		if err := mg.Force(int(version)); err != nil {
			return fmt.Errorf("%w: force version %d: %w", errMigration, version, err)
		}
		logger.Debug("dirty state cleared, retrying migration")
	}

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %w", errMigration, err)
	}

	logger.Debug("migration run ok")
	return nil
}

// NewSQLite открывает файл локального хранилища и создает схему
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	if path == "" {
		return nil, errDBPathIsEmpty
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create dir %s: %w", errDBInit, dir, err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDBInit, err)
	}
	// sqlite не любит параллельных писателей
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %w", errDBInit, err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: init schema: %w", errDBInit, err)
	}

	logger.Debug("sqlite store ready", zap.String("path", path))
	return conn, nil
}
