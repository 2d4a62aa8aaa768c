// Package sqlite provides SQLite-based persistent storage for Spikewise.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Device identities and their running reward state
		`CREATE TABLE IF NOT EXISTS users (
			device_id      TEXT PRIMARY KEY,
			age            INTEGER NOT NULL DEFAULT 0,
			gender         TEXT NOT NULL DEFAULT '',
			height_cm      REAL NOT NULL DEFAULT 0,
			weight_kg      REAL NOT NULL DEFAULT 0,
			activity_level TEXT NOT NULL DEFAULT 'moderate',
			target_sugar   INTEGER NOT NULL DEFAULT 30,
			bmi            REAL NOT NULL DEFAULT 0,
			streak         INTEGER NOT NULL DEFAULT 0,
			points         INTEGER NOT NULL DEFAULT 0,
			last_log_date  INTEGER,
			created_at     INTEGER NOT NULL
		)`,

		// Badge set: unique by (device, name) — awards stay idempotent even
		// if the service layer misbehaves
		`CREATE TABLE IF NOT EXISTS badges (
			device_id  TEXT NOT NULL,
			name       TEXT NOT NULL,
			icon       TEXT NOT NULL,
			awarded_at INTEGER NOT NULL,
			PRIMARY KEY (device_id, name)
		)`,

		// Consumption events
		`CREATE TABLE IF NOT EXISTS logs (
			id               TEXT PRIMARY KEY,
			device_id        TEXT NOT NULL,
			type             TEXT NOT NULL,
			intensity        INTEGER NOT NULL,
			created_at       INTEGER NOT NULL,
			action           TEXT NOT NULL DEFAULT '',
			insight          TEXT NOT NULL DEFAULT '',
			action_completed BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_device ON logs(device_id, created_at)`,

		// Append-only points ledger (audit trail for the running balance)
		`CREATE TABLE IF NOT EXISTS points_ledger (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			source    TEXT NOT NULL,
			amount    INTEGER NOT NULL,
			log_id    TEXT,
			balance   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_device ON points_ledger(device_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
