package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	sqliteSelectLastRunQuery = `
SELECT timestamp
FROM reports_last_run
WHERE report_name = ?`

	sqliteUpsertLastRunQuery = `
INSERT INTO reports_last_run (report_name, timestamp, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (report_name) DO UPDATE
	SET timestamp = excluded.timestamp,
	    updated_at = excluded.updated_at`
)

// SQLiteLastRunRepository локальный вариант хранилища для запусков из CLI
type SQLiteLastRunRepository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteLastRunRepository(db *sql.DB, log *zap.Logger) *SQLiteLastRunRepository {
	return &SQLiteLastRunRepository{
		db:  db,
		log: log,
	}
}

func (r *SQLiteLastRunRepository) GetLastRun(ctx context.Context, reportName string) (time.Time, error) {
	var ts int64
	err := r.db.QueryRowContext(ctx, sqliteSelectLastRunQuery, reportName).Scan(&ts)
	if err != nil {
		err = handleDBError(err)
		if !errors.Is(err, ErrNotFound) {
			r.log.Error("failed to read last run",
				zap.String("report", reportName),
				zap.Error(err),
			)
		}
		return time.Time{}, err
	}

	return time.Unix(ts, 0), nil
}

func (r *SQLiteLastRunRepository) SaveLastRun(ctx context.Context, reportName string, at time.Time) error {
	if reportName == "" {
		return ErrInvalidInput
	}

	if _, err := r.db.ExecContext(ctx, sqliteUpsertLastRunQuery, reportName, at.Unix()); err != nil {
		r.log.Error("failed to save last run",
			zap.String("report", reportName),
			zap.Error(err),
		)
		return handleDBError(err)
	}

	r.log.Debug("last run saved",
		zap.String("report", reportName),
		zap.Time("at", at),
	)
	return nil
}

func (r *SQLiteLastRunRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
