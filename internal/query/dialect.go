package query

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/emotionalsongs-core/internal/schema"
)

// Dialect identifies an SQL flavour.
type Dialect int

const (
	// SQLite uses ? placeholders.
	SQLite Dialect = iota + 1
	// Postgres uses $n placeholders.
	Postgres
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite:
		return SQLite, nil
	case DriverPostgres, "postgres":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

func (d Dialect) bindType() int {
	if d == Postgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

// Rebind rewrites ? placeholders into the dialect's syntax.
func (d Dialect) Rebind(q string) string {
	return sqlx.Rebind(d.bindType(), q)
}

// In expands slice arguments bound to ? placeholders into IN lists and
// rebinds the result.
func (d Dialect) In(q string, args ...any) (string, []any, error) {
	expanded, flat, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, fmt.Errorf("expanding IN list: %w", err)
	}
	return d.Rebind(expanded), flat, nil
}

// ColumnType returns the column type used when the dialect's store is missing
// a registered column.
func (d Dialect) ColumnType(t schema.Type) string {
	switch t {
	case schema.Integer:
		return "INTEGER"
	case schema.Long:
		if d == Postgres {
			return "BIGINT"
		}
		return "INTEGER"
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Binary:
		if d == Postgres {
			return "BYTEA"
		}
		return "BLOB"
	default:
		return "TEXT"
	}
}
