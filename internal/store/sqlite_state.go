package store

import (
	"context"
	"database/sql"
)

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys=ON;",
		`CREATE TABLE IF NOT EXISTS requests (
			zid TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('waiting', 'receiving')),
			position INTEGER NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_position ON requests(position);`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);`,
		`CREATE TABLE IF NOT EXISTS priorities (
			zid TEXT PRIMARY KEY,
			resolved INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			action TEXT NOT NULL,
			zid TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}
