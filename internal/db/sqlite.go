// Package db owns the SQLite file behind the offline snapshot cache.
package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db      *sql.DB
	initErr error
	once    sync.Once
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_updated_at ON snapshots(updated_at);`,
}

// InitDB opens the snapshot cache at dbPath and brings its schema up to date.
// Later calls return the same connection, or the first call's error.
func InitDB(dbPath string) (*sql.DB, error) {
	once.Do(func() {
		conn, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		if _, err := conn.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
			conn.Close()
			initErr = fmt.Errorf("failed to configure database: %w", err)
			return
		}

		if err := runMigrations(conn); err != nil {
			conn.Close()
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
		db = conn
	})

	if initErr != nil {
		return nil, initErr
	}
	return db, nil
}

// SchemaVersion reports how many migrations have been applied to conn.
func SchemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func runMigrations(conn *sql.DB) error {
	version, err := SchemaVersion(conn)
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// ResetDB closes the database and lets the next InitDB open a fresh one.
func ResetDB() {
	if db != nil {
		db.Close()
	}
	once = sync.Once{}
	db = nil
	initErr = nil
}

// NewTestDB creates a fresh in-memory database, bypassing the singleton.
func NewTestDB() (*sql.DB, error) {
	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}
	// Each pooled connection to :memory: is its own database.
	testDB.SetMaxOpenConns(1)

	if err := runMigrations(testDB); err != nil {
		testDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return testDB, nil
}
