package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion tracks the database schema version
const CurrentSchemaVersion = "1.0.0"

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Raw entries: ingested text awaiting processing
CREATE TABLE IF NOT EXISTS raw_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    created_at TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' -- pending | processed | error
);

CREATE INDEX IF NOT EXISTS idx_raw_entries_status ON raw_entries(status);

-- Cleaned entries: at most one per raw entry, removed with it
CREATE TABLE IF NOT EXISTS cleaned_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    raw_id INTEGER NOT NULL UNIQUE,
    clean_text TEXT NOT NULL,
    metadata_json TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (raw_id) REFERENCES raw_entries(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cleaned_entries_raw ON cleaned_entries(raw_id);
`

const migrationV1Down = `
DROP TABLE IF EXISTS cleaned_entries;
DROP TABLE IF EXISTS raw_entries;
DROP TABLE IF EXISTS schema_version;
`

// searchIndexDDL creates the optional FTS5 index over cleaned text and
// the triggers that mirror inserts, deletes, and updates into it. It is
// applied best-effort after the base migrations; an SQLite build
// without the FTS5 module simply runs without the index.
const searchIndexDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS cleaned_entries_fts USING fts5(
    clean_text,
    content='cleaned_entries',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS cleaned_entries_ai AFTER INSERT ON cleaned_entries BEGIN
    INSERT INTO cleaned_entries_fts(rowid, clean_text)
    VALUES (new.id, new.clean_text);
END;

CREATE TRIGGER IF NOT EXISTS cleaned_entries_ad AFTER DELETE ON cleaned_entries BEGIN
    INSERT INTO cleaned_entries_fts(cleaned_entries_fts, rowid, clean_text)
    VALUES ('delete', old.id, old.clean_text);
END;

CREATE TRIGGER IF NOT EXISTS cleaned_entries_au AFTER UPDATE ON cleaned_entries BEGIN
    INSERT INTO cleaned_entries_fts(cleaned_entries_fts, rowid, clean_text)
    VALUES ('delete', old.id, old.clean_text);
    INSERT INTO cleaned_entries_fts(rowid, clean_text)
    VALUES (new.id, new.clean_text);
END;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	// Parse current version (default to 0.0.0 if no migrations applied or table doesn't exist)
	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var currentVersion string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	for _, migration := range AllMigrations {
		if migration.Version != currentVersion {
			continue
		}
		if _, err := db.ExecContext(ctx, migration.Down); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
			return fmt.Errorf("failed to unrecord migration %s: %w", migration.Version, err)
		}
		return nil
	}

	return fmt.Errorf("unknown schema version %s", currentVersion)
}

// ensureSearchIndex creates the FTS5 virtual table and its sync
// triggers. An SQLite build without the FTS5 module is an expected
// condition, reported as false rather than an error.
func ensureSearchIndex(ctx context.Context, db *sql.DB) bool {
	if _, err := db.ExecContext(ctx, searchIndexDDL); err != nil {
		return false
	}
	return true
}
