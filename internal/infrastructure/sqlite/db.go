// Package sqlite is a single-file EventRepository for small deployments.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      TEXT    NOT NULL,
	title        TEXT    NOT NULL DEFAULT '',
	description  TEXT    NOT NULL DEFAULT '',
	location     TEXT    NOT NULL DEFAULT '',
	scheduled_at INTEGER,
	draft        INTEGER NOT NULL DEFAULT 1,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS events_open_draft_idx ON events (user_id) WHERE draft = 1;
CREATE TABLE IF NOT EXISTS event_rsvps (
	event_id     INTEGER NOT NULL REFERENCES events (id) ON DELETE CASCADE,
	user_id      TEXT    NOT NULL,
	username     TEXT    NOT NULL DEFAULT '',
	first_name   TEXT    NOT NULL DEFAULT '',
	last_name    TEXT    NOT NULL DEFAULT '',
	status       TEXT    NOT NULL,
	responded_at INTEGER NOT NULL,
	PRIMARY KEY (event_id, user_id)
);`

// Open opens (creating if needed) the database file at path and applies the
// schema.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	slog.Info("sqlite store opened", slog.String("path", path))
	return db, nil
}
