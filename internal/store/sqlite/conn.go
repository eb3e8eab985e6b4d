package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) a SQLite database at the given path with WAL journaling
// and foreign keys enabled.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// single writer; avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Users (
            UserId TEXT PRIMARY KEY,
            Email TEXT NOT NULL UNIQUE,
            Username TEXT NOT NULL,
            PasswordHash TEXT NOT NULL,
            CreationTime INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS Sessions (
            Token TEXT PRIMARY KEY,
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            Username TEXT NOT NULL,
            Email TEXT NOT NULL,
            ExpiresAt INTEGER
        );`,
		`CREATE TABLE IF NOT EXISTS TimelineEntries (
            UserId TEXT NOT NULL REFERENCES Users(UserId) ON DELETE CASCADE,
            EntryId TEXT NOT NULL,
            EntryDate TEXT NOT NULL,
            UserName TEXT NOT NULL,
            Client TEXT NOT NULL,
            Task TEXT NOT NULL,
            DocketNumber TEXT NOT NULL DEFAULT '',
            Description TEXT NOT NULL,
            TimeSpent TEXT NOT NULL,
            CreationTime INTEGER NOT NULL,
            UpdateTime INTEGER NOT NULL,
            PRIMARY KEY(UserId, EntryId)
        );`,
		`CREATE INDEX IF NOT EXISTS TimelineEntriesByDate ON TimelineEntries(UserId, EntryDate DESC, CreationTime DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
