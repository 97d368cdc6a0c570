package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			has_current INTEGER NOT NULL DEFAULT 0,
			context_type TEXT,
			context_id TEXT,
			context_name TEXT
		);

		CREATE TABLE IF NOT EXISTS queue_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			uid TEXT NOT NULL,
			media_id TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			source INTEGER NOT NULL,
			isolated INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL,
			UNIQUE(position),
			UNIQUE(uid)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_items_position ON queue_items(position);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
