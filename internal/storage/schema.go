package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured database and verifies the connection.
// driver is "sqlite" or "postgres"; dsn is the file path for SQLite and the
// connection string for Postgres.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "sqlite":
		db, err := sql.Open("sqlite3",
			fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// SQLite serializes writers; a single connection avoids lock errors.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping sqlite database: %w", err)
		}
		return db, nil

	case "postgres":
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// InitSchema creates all tables and indexes if they do not exist. The DDL is
// written to run unchanged on both SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS faq_entries (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			keywords TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'en',
			mode TEXT NOT NULL DEFAULT 'normal',
			created_at TIMESTAMP NOT NULL,
			last_active_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_session
			ON conversations(session_id)`,
		`CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			content TEXT NOT NULL,
			is_user BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation
			ON turns(conversation_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS handoff_tickets (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL
		)`,
		// At most one pending ticket per conversation; resolved and contacted
		// tickets do not block new requests.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_pending
			ON handoff_tickets(conversation_id) WHERE status = 'pending'`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}
