package shared

import (
	"database/sql"
	"fmt"
)

// Migration represents a versioned schema change for the scan cache database.
type Migration struct {
	Version int
	Name    string
	SQL     []string
}

// migrations lists every schema version in order. Append only; never edit an
// applied migration.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_scanned_files",
		SQL: []string{
			`CREATE TABLE IF NOT EXISTS scanned_files (
				id TEXT PRIMARY KEY,
				sequence INTEGER NOT NULL,
				artist TEXT NOT NULL,
				title TEXT NOT NULL,
				path TEXT NOT NULL UNIQUE,
				scanned_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_scanned_files_artist_title ON scanned_files(artist, title)`,
			`CREATE TABLE IF NOT EXISTS scanned_files_sequence (id INTEGER PRIMARY KEY, value INTEGER NOT NULL)`,
			`INSERT OR IGNORE INTO scanned_files_sequence (id, value) VALUES (1, 0)`,
		},
	},
	{
		Version: 2,
		Name:    "create_captures",
		SQL: []string{
			`CREATE TABLE IF NOT EXISTS captures (
				id TEXT PRIMARY KEY,
				sequence INTEGER NOT NULL,
				artist TEXT NOT NULL,
				title TEXT NOT NULL,
				captured_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE(artist, title, captured_at)
			)`,
			`CREATE TABLE IF NOT EXISTS captures_sequence (id INTEGER PRIMARY KEY, value INTEGER NOT NULL)`,
			`INSERT OR IGNORE INTO captures_sequence (id, value) VALUES (1, 0)`,
		},
	},
}

// RunMigrations executes all pending migrations on the database.
// Creates a schema_migrations table to track applied versions.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", m.Version).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// CurrentVersion returns the highest applied migration version, 0 when none.
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// applyMigration executes a migration's statements and records it, all in one transaction.
func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.SQL {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return err
	}

	return tx.Commit()
}
