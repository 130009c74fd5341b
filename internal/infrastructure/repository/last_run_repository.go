package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	selectLastRunQuery = `
SELECT timestamp
FROM reports_last_run
WHERE report_name = $1`

	upsertLastRunQuery = `
INSERT INTO reports_last_run (report_name, timestamp, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (report_name) DO UPDATE
	SET timestamp = EXCLUDED.timestamp,
	    updated_at = EXCLUDED.updated_at`
)

// LastRunRepository хранит время последнего запуска отчетов в postgres
type LastRunRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewLastRunRepository(db *pgxpool.Pool, log *zap.Logger) *LastRunRepository {
	return &LastRunRepository{
		db:  db,
		log: log,
	}
}

func (r *LastRunRepository) GetLastRun(ctx context.Context, reportName string) (time.Time, error) {
	var ts int64
	err := r.db.QueryRow(ctx, selectLastRunQuery, reportName).Scan(&ts)
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

func (r *LastRunRepository) SaveLastRun(ctx context.Context, reportName string, at time.Time) error {
	if reportName == "" {
		return ErrInvalidInput
	}

	// Запрос в бд
	if _, err := r.db.Exec(ctx, upsertLastRunQuery, reportName, at.Unix()); err != nil {
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

func (r *LastRunRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
