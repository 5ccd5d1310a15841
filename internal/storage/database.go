package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
//
// The emails table is owned by the external ingestion subsystem; this service
// only reads rows and writes processed_for_tasks, claimed_at and embedding.
// The tasks.category CHECK enforces the fixed category vocabulary at the
// schema level; the extractor relies on the resulting constraint error to
// retry with a null category rather than dropping a task.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			recipients TEXT NOT NULL DEFAULT '[]',
			subject TEXT NOT NULL DEFAULT '',
			body_text TEXT NOT NULL DEFAULT '',
			body_html TEXT,
			thread_id TEXT,
			received_at DATETIME NOT NULL,
			processed_for_tasks DATETIME,
			claimed_at DATETIME,
			embedding TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_emails_unprocessed
			ON emails (received_at DESC) WHERE processed_for_tasks IS NULL;`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			email_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			source_snippet TEXT NOT NULL DEFAULT '',
			category TEXT CHECK (category IS NULL OR category IN (
				'follow_up', 'report_submission', 'meeting_prep',
				'review_approval', 'research', 'planning',
				'external_communication', 'internal_project_task',
				'administrative', 'urgent', 'information_only',
				'personal_reminder'
			)),
			priority TEXT NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
			due_hint TEXT NOT NULL DEFAULT '',
			due_date DATETIME,
			status TEXT NOT NULL DEFAULT 'pending',
			ai_generated INTEGER NOT NULL DEFAULT 0,
			ai_confidence INTEGER NOT NULL DEFAULT 0,
			ai_model TEXT NOT NULL DEFAULT '',
			needs_review INTEGER NOT NULL DEFAULT 1,
			original_ai_suggestion TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (email_id) REFERENCES emails(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_needs_review
			ON tasks (created_at DESC) WHERE needs_review = 1;`,
		`CREATE TABLE IF NOT EXISTS provider_settings (
			user_id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			api_key TEXT NOT NULL DEFAULT '',
			base_url TEXT NOT NULL DEFAULT '',
			embedding_model TEXT NOT NULL DEFAULT '',
			embedding_base_url TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
