package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/docchat/internal"
	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT
)`

const upsertSQL = "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"

// SQLiteStore persists values in a single-table SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: keeps ":memory:" a single database and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already open database that has the kv table
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// Set stores value under key
func (s *SQLiteStore) Set(key, value string) error {
	if _, err := s.db.Exec(upsertSQL, key, value); err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// SetMany stores all pairs in one transaction
func (s *SQLiteStore) SetMany(pairs []internal.KeyValuePair) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	stmt, err := tx.Prepare(upsertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare failed: %w", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		if _, err := stmt.Exec(pair.Key, pair.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s failed: %w", pair.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// Remove deletes key
func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// Keys returns all keys starting with prefix, sorted
func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key", len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return keys, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
