package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound для отчета еще не сохранено время запуска
	ErrNotFound = errors.New("last run not found")
	// ErrInvalidInput пустое имя отчета или время запуска, нарушающее ограничения таблицы
	ErrInvalidInput = errors.New("invalid last run value")
)

// handleDBError приводит ошибки postgres и sqlite к общим ошибкам хранилища
func handleDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502", "23514":
			return ErrInvalidInput
		}
	}

	// Расширенные коды sqlite, младший байт общий для всех нарушений ограничений
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return ErrInvalidInput
	}

	return err
}
