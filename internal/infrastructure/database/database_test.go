package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nerrad567/emotionalsongs-core/internal/query"
)

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(Config{Path: dbPath, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("defaults to sqlite dialect", func(t *testing.T) {
		db := openTestDB(t)
		defer db.Close() //nolint:errcheck // Test cleanup

		if db.Dialect() != query.SQLite {
			t.Errorf("Dialect() = %v, want %v", db.Dialect(), query.SQLite)
		}
		if db.Path() == "" {
			t.Error("Path() is empty for sqlite")
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		if _, err := Open(Config{Driver: "oracle"}); err == nil {
			t.Error("Open() with unknown driver should fail")
		}
	})

	t.Run("pgx requires dsn", func(t *testing.T) {
		_, err := Open(Config{Driver: "pgx"})
		if !errors.Is(err, ErrMissingDSN) {
			t.Errorf("Open() error = %v, want ErrMissingDSN", err)
		}
	})
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

// TestBeginTxRollback verifies a rolled back residence is not visible.
func TestBeginTxRollback(t *testing.T) {
	db := openMigratedDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO residence (id, street, civic_number, council_name, province_name) VALUES (?, ?, ?, ?, ?)",
		"R1", "Via Roma", 1, "Varese", "VA")
	if err != nil {
		t.Fatalf("INSERT error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM residence").Scan(&count); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows, got %d", count)
	}
}

// TestIsUniqueViolation verifies conflict detection against real constraint errors.
func TestIsUniqueViolation(t *testing.T) {
	db := openMigratedDB(t)
	ctx := context.Background()

	insert := "INSERT INTO residence (id, street, civic_number, council_name, province_name) VALUES (?, ?, ?, ?, ?)"
	if _, err := db.ExecContext(ctx, insert, "R1", "Via Roma", 1, "Varese", "VA"); err != nil {
		t.Fatalf("first insert error = %v", err)
	}

	t.Run("natural key", func(t *testing.T) {
		_, err := db.ExecContext(ctx, insert, "R2", "Via Roma", 1, "Varese", "VA")
		if !IsUniqueViolation(err) {
			t.Errorf("IsUniqueViolation(%v) = false, want true", err)
		}
	})

	t.Run("primary key", func(t *testing.T) {
		_, err := db.ExecContext(ctx, insert, "R1", "Via Milano", 2, "Como", "CO")
		if !IsUniqueViolation(err) {
			t.Errorf("IsUniqueViolation(%v) = false, want true", err)
		}
	})

	t.Run("foreign key is not a conflict", func(t *testing.T) {
		_, err := db.ExecContext(ctx,
			"INSERT INTO account (id, name, surname, nickname, email, password_hash, residence_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
			"A1", "Ada", "Lovelace", "ada", "ada@example.com", "x", "missing")
		if err == nil {
			t.Fatal("expected foreign key error")
		}
		if IsUniqueViolation(err) {
			t.Errorf("IsUniqueViolation(%v) = true, want false", err)
		}
	})

	t.Run("postgres unique_violation", func(t *testing.T) {
		err := fmt.Errorf("executing query: %w", &pgconn.PgError{Code: "23505"})
		if !IsUniqueViolation(err) {
			t.Error("IsUniqueViolation(23505) = false, want true")
		}
		if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
			t.Error("IsUniqueViolation(23503) = true, want false")
		}
	})

	t.Run("nil and plain errors", func(t *testing.T) {
		if IsUniqueViolation(nil) || IsUniqueViolation(errors.New("boom")) {
			t.Error("IsUniqueViolation should be false for nil and plain errors")
		}
	})
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN(Config{Path: "/data/catalog.db", BusyTimeout: 5, WALMode: true})

	if !strings.HasPrefix(dsn, "file:/data/catalog.db?") {
		t.Errorf("dsn = %q, want file URI for the path", dsn)
	}
	for _, want := range []string{"_foreign_keys=on", "_busy_timeout=5000", "_journal_mode=WAL", "_synchronous=NORMAL"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}

	if dsn := sqliteDSN(Config{Path: "x.db"}); strings.Contains(dsn, "_journal_mode") {
		t.Errorf("dsn %q sets journal mode without WAL", dsn)
	}
}
