// Package store persists influencer records and their refresh history
// in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS influencers (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	username          TEXT NOT NULL,
	platform          TEXT NOT NULL,
	followers         INTEGER NOT NULL DEFAULT 0,
	following         INTEGER NOT NULL DEFAULT 0,
	posts_count       INTEGER NOT NULL DEFAULT 0,
	bio               TEXT NOT NULL DEFAULT '',
	profile_url       TEXT NOT NULL DEFAULT '',
	profile_picture   TEXT NOT NULL DEFAULT '',
	is_private        INTEGER NOT NULL DEFAULT 0,
	is_verified       INTEGER NOT NULL DEFAULT 0,
	category          TEXT NOT NULL DEFAULT '',
	notes             TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_refreshed_at TIMESTAMP,
	UNIQUE (platform, username)
);

CREATE TABLE IF NOT EXISTS activities (
	id            TEXT PRIMARY KEY,
	influencer_id TEXT NOT NULL REFERENCES influencers(id) ON DELETE CASCADE,
	kind          TEXT NOT NULL,
	detail        TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_influencers_platform ON influencers(platform);
CREATE INDEX IF NOT EXISTS idx_activities_influencer ON activities(influencer_id, created_at);
`

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
