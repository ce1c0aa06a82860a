// Package database provides store connectivity for the catalog.
//
// This package manages:
//   - Connections to SQLite (mattn/go-sqlite3) or PostgreSQL (pgx stdlib)
//   - Schema migrations via goose, one migration directory per dialect
//   - Conflict detection for UNIQUE constraints on either driver
//   - Connection pooling and lifecycle management
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - SQLite database file permissions are set to 0600 (owner read/write only)
//   - Passwords are stored as argon2id hashes, never in clear
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration Strategy:
//
// Migrations are additive-only:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Never DROP or RENAME columns that the schema registry still names
//   - SQLite and PostgreSQL files are kept in step, same version numbers
package database
