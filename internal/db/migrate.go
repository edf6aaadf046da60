package db

import (
	"database/sql"
	"fmt"
)

// All contains the ordered list of migrations to apply.
var All = []string{
	`CREATE TABLE runs (
		id         TEXT PRIMARY KEY,
		source     TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		passed     INTEGER NOT NULL DEFAULT 0,
		failed     INTEGER NOT NULL DEFAULT 0,
		pending    INTEGER NOT NULL DEFAULT 0,
		report     TEXT NOT NULL
	)`,
	`CREATE TABLE features (
		id             INTEGER PRIMARY KEY,
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		feature_id     INTEGER NOT NULL,
		filename       TEXT NOT NULL,
		title          TEXT NOT NULL,
		status         TEXT NOT NULL,
		passed         INTEGER NOT NULL DEFAULT 0,
		failed         INTEGER NOT NULL DEFAULT 0,
		pending        INTEGER NOT NULL DEFAULT 0,
		execution_time INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE scenarios (
		id          INTEGER PRIMARY KEY,
		feature_row INTEGER NOT NULL REFERENCES features(id) ON DELETE CASCADE,
		scenario_id INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		title       TEXT NOT NULL,
		status      TEXT NOT NULL
	)`,
	`CREATE INDEX runs_source ON runs(source)`,
}

func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count); err != nil {
		return fmt.Errorf("checking schema_version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("initializing schema version: %w", err)
		}
	}

	var current int
	if err := db.QueryRow(`SELECT version FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(All); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(All[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}
