package database

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/nerrad567/emotionalsongs-core/internal/query"
)

// MigrationsFS should be set by the migrations package to embed migration files.
// It holds one directory per dialect ("sqlite", "postgres") of goose SQL files.
//
// Usage in a migrations package:
//
//	//go:embed sqlite/*.sql postgres/*.sql
//	var migrationsFS embed.FS
//
//	func init() {
//	    database.MigrationsFS = migrationsFS
//	}
var MigrationsFS fs.FS

// MigrationState describes one migration known to the store or the binary.
type MigrationState struct {
	Version   int64
	Source    string
	Applied   bool
	AppliedAt time.Time
}

// migrationsDir returns the directory within MigrationsFS for d.
func migrationsDir(d query.Dialect) string {
	return d.String()
}

func gooseDialect(d query.Dialect) goose.Dialect {
	if d == query.Postgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// provider builds a goose provider over the dialect's migration directory.
func (db *DB) provider() (*goose.Provider, error) {
	if MigrationsFS == nil {
		return nil, ErrNoMigrations
	}
	sub, err := fs.Sub(MigrationsFS, migrationsDir(db.dialect))
	if err != nil {
		return nil, fmt.Errorf("opening %s migrations: %w", db.dialect, err)
	}
	p, err := goose.NewProvider(gooseDialect(db.dialect), db.DB, sub)
	if err != nil {
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	return p, nil
}

// Migrate applies all pending migrations in version order and returns how
// many were applied.
//
// Each migration runs in its own transaction. If migration N fails the
// earlier ones stay committed and re-running Migrate continues from N.
//
// Returns:
//   - int: number of migrations applied by this call (0 when up to date)
//   - error: ErrNoMigrations when nothing is registered for the dialect, or
//     the wrapped goose error
//
// Example:
//
//	applied, err := db.Migrate(ctx)
//	if err != nil {
//	    return fmt.Errorf("migrating: %w", err)
//	}
//	log.Info("database migrated", "applied", applied)
func (db *DB) Migrate(ctx context.Context) (int, error) {
	p, err := db.provider()
	if err != nil {
		return 0, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("applying migrations: %w", err)
	}
	return len(results), nil
}

// MigrationStatus returns every known migration and whether it is applied.
//
// The result is ordered by version and includes migrations embedded in the
// binary that the store has not applied yet (Applied false, zero AppliedAt).
func (db *DB) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	p, err := db.provider()
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading migration status: %w", err)
	}

	states := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, MigrationState{
			Version:   s.Source.Version,
			Source:    s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return states, nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	p, err := db.provider()
	if err != nil {
		return 0, err
	}
	v, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}
