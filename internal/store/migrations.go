package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all Codelab tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS launch_sessions (
		id            TEXT PRIMARY KEY,
		credential    TEXT NOT NULL UNIQUE,
		user_id       TEXT NOT NULL,
		roles         TEXT NOT NULL DEFAULT '[]',
		context_id    TEXT NOT NULL DEFAULT '',
		context_label TEXT NOT NULL DEFAULT '',
		issuer        TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		expires_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS grades (
		id               TEXT PRIMARY KEY,
		session_id       TEXT NOT NULL,
		user_id          TEXT NOT NULL,
		context_id       TEXT NOT NULL DEFAULT '',
		score            REAL NOT NULL,
		normalized_score REAL NOT NULL,
		comment          TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_launch_sessions_credential ON launch_sessions(credential)`,
	`CREATE INDEX IF NOT EXISTS idx_launch_sessions_expires_at ON launch_sessions(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_user_context ON grades(user_id, context_id)`,
}

// migrate applies the schema statements in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
