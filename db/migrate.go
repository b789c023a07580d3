package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate applies idempotent schema changes for all required tables and indices.
// Safe to run on every boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS servers (
			id SERIAL PRIMARY KEY,
			discord_server_id TEXT UNIQUE NOT NULL,
			name TEXT,
			target_channel_id TEXT,
			owner_id TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			discord_user_id TEXT UNIQUE NOT NULL,
			username TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id SERIAL PRIMARY KEY,
			server_id INTEGER NOT NULL REFERENCES servers(id),
			message_id TEXT NOT NULL,
			activity_name TEXT,
			file_url TEXT NOT NULL,
			video_owner TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		// (server, message) is the idempotency key for archival.
		`CREATE UNIQUE INDEX IF NOT EXISTS videos_server_message_idx ON videos (server_id, message_id)`,
		`CREATE INDEX IF NOT EXISTS videos_server_idx ON videos (server_id)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
