package storage

import (
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "create_sessions_table", createSessionsTable},
	{2, "create_messages_table", createMessagesTable},
	{3, "create_uploaded_files_table", createUploadedFilesTable},
	{4, "create_agents_table", createAgentsTable},
	{5, "create_indices", createIndices},
	{6, "add_session_agent", addSessionAgent},
}

// applyMigrations applies all pending migrations in order.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("could not enable foreign keys: %w", err)
	}

	if err := createMigrationsTable(db); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.version)
		if err != nil {
			return fmt.Errorf("could not check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("could not begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("could not apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("could not record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("could not commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table.
func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// isMigrationApplied checks if a migration has been applied.
func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Costs are stored as decimal strings so totals stay exact.

const createSessionsTable = `
CREATE TABLE sessions (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL,
	temperature REAL NOT NULL,
	top_p REAL NOT NULL,
	max_tokens INTEGER NOT NULL,
	functions TEXT NOT NULL DEFAULT '[]',
	web_search BOOLEAN NOT NULL DEFAULT 0,
	system_prompt TEXT NOT NULL DEFAULT '',
	total_input_tokens INTEGER NOT NULL DEFAULT 0,
	total_output_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	total_estimated_cost TEXT NOT NULL DEFAULT '0',
	message_count INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

const createMessagesTable = `
CREATE TABLE messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	estimated_cost TEXT NOT NULL DEFAULT '0',
	metadata TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`

const createUploadedFilesTable = `
CREATE TABLE uploaded_files (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	file_type TEXT NOT NULL,
	content_preview TEXT NOT NULL DEFAULT '',
	image_format TEXT,
	width INTEGER,
	height INTEGER,
	size INTEGER NOT NULL DEFAULT 0,
	uploaded_at TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);
`

const createAgentsTable = `
CREATE TABLE agents (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL,
	temperature REAL NOT NULL,
	top_p REAL NOT NULL,
	max_tokens INTEGER NOT NULL,
	functions TEXT NOT NULL DEFAULT '[]',
	web_search BOOLEAN NOT NULL DEFAULT 0,
	system_prompt TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	current_session_id TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (current_session_id) REFERENCES sessions(id) ON DELETE SET NULL
);
`

const createIndices = `
CREATE INDEX idx_messages_session ON messages(session_id, created_at);
CREATE INDEX idx_files_session ON uploaded_files(session_id, uploaded_at);
CREATE INDEX idx_sessions_updated ON sessions(updated_at);
CREATE INDEX idx_sessions_model ON sessions(model);
CREATE INDEX idx_agents_active ON agents(is_active);
`

const addSessionAgent = `
ALTER TABLE sessions ADD COLUMN agent_id TEXT REFERENCES agents(id) ON DELETE SET NULL;
CREATE INDEX idx_sessions_agent ON sessions(agent_id, created_at);
`
