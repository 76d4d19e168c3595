// Package db owns the SQLite connection and schema for the media
// library store.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the library database under
// dataDir and applies the schema.
func Open(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := filepath.Join(dataDir, "mediadb.sqlite") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's driver serializes writes per connection; a single
	// connection avoids SQLITE_BUSY between concurrent scans.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Println("Database connection established")
	return conn, nil
}

// OpenMemory opens an in-memory database with the schema applied.
// Used by tests.
func OpenMemory() (*sql.DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Migrate creates the schema if it does not exist and seeds the
// single settings row.
func Migrate(conn *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			hide_panel INTEGER NOT NULL DEFAULT 0,
			card_width INTEGER NOT NULL DEFAULT 240,
			card_height INTEGER NOT NULL DEFAULT 320,
			skip_folders TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS folder_data (
			folder_name TEXT PRIMARY KEY,
			folder_path TEXT NOT NULL,
			position INTEGER NOT NULL,
			sort_type INTEGER NOT NULL DEFAULT 0,
			filter_type INTEGER NOT NULL DEFAULT 0,
			status INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			folder_name TEXT NOT NULL REFERENCES folder_data(folder_name) ON DELETE CASCADE,
			path TEXT NOT NULL,
			kind INTEGER NOT NULL,
			title TEXT NOT NULL,
			posters TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			file TEXT NOT NULL DEFAULT '',
			seasons TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (folder_name, path)
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			folder_name TEXT NOT NULL REFERENCES folder_data(folder_name) ON DELETE CASCADE,
			path TEXT NOT NULL,
			t TEXT NOT NULL,
			name TEXT NOT NULL,
			UNIQUE (folder_name, path, t, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_folder ON media(folder_name)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_folder ON tags(folder_name)`,
		`INSERT OR IGNORE INTO settings (id, hide_panel, card_width, card_height, skip_folders)
			VALUES (1, 0, 240, 320, '')`,
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
