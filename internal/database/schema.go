package database

import "database/sql"

// Schema version for migrations
const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			// One row per built plan
			`CREATE TABLE plans (
				id TEXT PRIMARY KEY,
				created_at DATETIME NOT NULL,
				command TEXT NOT NULL,
				roots TEXT NOT NULL,
				dest TEXT,
				status TEXT NOT NULL DEFAULT 'built',

				total INTEGER NOT NULL DEFAULT 0,
				renames INTEGER NOT NULL DEFAULT 0,
				moves INTEGER NOT NULL DEFAULT 0,
				deletes INTEGER NOT NULL DEFAULT 0,
				skips INTEGER NOT NULL DEFAULT 0,
				flagged INTEGER NOT NULL DEFAULT 0,
				bytes_to_delete INTEGER NOT NULL DEFAULT 0,

				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_plans_created ON plans(created_at)`,

			`CREATE TABLE plan_records (
				plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
				seq INTEGER NOT NULL,
				source_path TEXT NOT NULL,
				target_path TEXT,
				action TEXT NOT NULL,
				reason_code TEXT NOT NULL,
				quality_color TEXT,
				flags TEXT,
				role TEXT,
				kind TEXT,
				title TEXT,
				year INTEGER,
				size INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (plan_id, seq)
			)`,
			`CREATE INDEX idx_plan_records_source ON plan_records(source_path)`,
			`CREATE INDEX idx_plan_records_action ON plan_records(plan_id, action)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			// Audit log of applied operations
			`CREATE TABLE operations_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				plan_id TEXT,
				operation_type TEXT NOT NULL,
				source_path TEXT NOT NULL,
				target_path TEXT,
				reason TEXT,
				status TEXT NOT NULL,
				error TEXT,
				bytes INTEGER NOT NULL DEFAULT 0,
				executed_by TEXT NOT NULL,
				executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_operations_log_plan ON operations_log(plan_id)`,
			`CREATE INDEX idx_operations_log_executed ON operations_log(executed_at)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		// each migration inserts its own schema_version row
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
