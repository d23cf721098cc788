package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`

// CreateInMemoryDB creates an in-memory SQLite database with the kv table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// Each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create kv table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTestDB creates an in-memory database holding the sample sessions
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	for key, value := range SampleKV() {
		InsertKV(t, db, key, value)
	}
	return db
}

// InsertKV inserts or replaces a raw key/value row
func InsertKV(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}
