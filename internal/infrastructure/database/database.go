package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"

	"github.com/nerrad567/emotionalsongs-core/internal/query"
)

const (
	sqliteDirMode  os.FileMode = 0o750
	sqliteFileMode os.FileMode = 0o600

	pingTimeout = 5 * time.Second

	// defaultMaxOpenConns sizes the PostgreSQL pool when database.max_open_conns is unset.
	defaultMaxOpenConns = 10
)

// DB is a catalog store connection: a *sql.DB plus the SQL dialect it speaks.
type DB struct {
	*sql.DB
	path    string
	dialect query.Dialect
}

// Config mirrors the database section of the config file.
type Config struct {
	// Driver is "sqlite3" (default) or "pgx".
	Driver string

	// Path of the SQLite file. Missing parent directories are created.
	Path string

	// DSN is the PostgreSQL connection URL.
	DSN string

	// SQLite only.
	WALMode     bool
	BusyTimeout int // seconds

	// MaxOpenConns caps the PostgreSQL pool.
	MaxOpenConns int
}

// pool holds database/sql pool limits.
type pool struct {
	maxOpen, maxIdle int
	lifetime, idle   time.Duration
}

func (p pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.lifetime)
	db.SetConnMaxIdleTime(p.idle)
}

// Open connects to the configured store and pings it.
//
// It performs the following steps:
//  1. Resolves the dialect from cfg.Driver ("sqlite3" when empty)
//  2. For SQLite, creates the parent directory and builds a file URI with
//     foreign keys, busy timeout and optional WAL
//  3. Applies pool limits (one connection for SQLite, max_open_conns for PostgreSQL)
//  4. Pings within pingTimeout
//  5. For SQLite, restricts the file to 0600
//
// Parameters:
//   - cfg: database settings, usually from config.DatabaseConfig
//
// Returns:
//   - *DB: open connection; the caller must Close it
//   - error: ErrMissingDSN for pgx without a DSN, or a wrapped driver error
//
// Open does not migrate. Call Migrate before serving.
func Open(cfg Config) (*DB, error) {
	// Resolve dialect
	if cfg.Driver == "" {
		cfg.Driver = query.DriverSQLite
	}
	dialect, err := query.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var (
		driver string
		dsn    string
		limits pool
	)
	switch dialect {
	case query.Postgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("opening database: %w", ErrMissingDSN)
		}
		n := cfg.MaxOpenConns
		if n <= 0 {
			n = defaultMaxOpenConns
		}
		driver, dsn = query.DriverPostgres, cfg.DSN
		limits = pool{maxOpen: n, maxIdle: n / 2, lifetime: time.Hour, idle: 30 * time.Minute}
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), sqliteDirMode); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		driver, dsn = query.DriverSQLite, sqliteDSN(cfg)
		// One connection: SQLite has a single writer, and a cursor must be
		// closed before the next statement runs.
		limits = pool{maxOpen: 1, maxIdle: 1, lifetime: time.Hour, idle: 30 * time.Minute}
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	limits.apply(sqlDB)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dialect, err)
	}

	if dialect == query.SQLite {
		// The file may not exist until the first write; a later Open tightens it.
		_ = os.Chmod(cfg.Path, sqliteFileMode)
	}
	return &DB{DB: sqlDB, path: cfg.Path, dialect: dialect}, nil
}

// sqliteDSN builds a go-sqlite3 file URI with foreign keys enforced.
func sqliteDSN(cfg Config) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", strconv.Itoa(int((time.Duration(cfg.BusyTimeout) * time.Second).Milliseconds())))
	if cfg.WALMode {
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
	}
	return "file:" + cfg.Path + "?" + params.Encode()
}

// Close releases the pool. Closing a zero DB is a no-op.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path is the SQLite file, or "" for PostgreSQL.
func (db *DB) Path() string { return db.path }

// Dialect reports which SQL dialect the store speaks.
func (db *DB) Dialect() query.Dialect { return db.dialect }

// HealthCheck runs a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return nil
}

// ExecContext wraps driver errors with context. They stay reachable through
// errors.As, so IsUniqueViolation keeps working.
func (db *DB) ExecContext(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	res, err := db.DB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}
