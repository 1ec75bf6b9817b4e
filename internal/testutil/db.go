// Package testutil provides shared helpers for tests that need live SQLite
// databases with deterministic content.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens a fresh on-disk SQLite database in the test's temp directory
// and closes it when the test finishes.
//
// The pool is limited to a single connection: SQLite supports one writer at
// a time, and a single connection keeps reads and writes on the same
// underlying database handle.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("connect to sqlite database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// Exec runs each statement in order, failing the test on the first error.
func Exec(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// SeedUsersPosts creates the users/posts schema used across tests and
// inserts the given user names with sequential ids. Posts starts empty.
func SeedUsersPosts(t *testing.T, db *sql.DB, users ...string) {
	t.Helper()
	Exec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, updated_at TEXT)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, author_id INTEGER, title TEXT)`,
	)
	for i, name := range users {
		if _, err := db.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, i+1, name); err != nil {
			t.Fatalf("seed user %q: %v", name, err)
		}
	}
}
