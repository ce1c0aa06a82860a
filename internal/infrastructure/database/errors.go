package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

var (
	// ErrMissingDSN is returned when the PostgreSQL driver is selected without a DSN.
	ErrMissingDSN = errors.New("database: dsn is required for the pgx driver")

	// ErrNoMigrations is returned when no migrations are registered for the dialect.
	ErrNoMigrations = errors.New("database: no migrations registered")
)

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY
// constraint rejecting a write, on either supported driver.
//
// Driver errors are matched with errors.As, so wrapping with %w is fine:
//   - SQLite: sqlite3.ErrConstraint with extended code UNIQUE or PRIMARYKEY
//   - PostgreSQL: SQLSTATE 23505 (unique_violation)
//
// The resolver uses it to tell "someone else inserted this key" apart from
// other write failures.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
