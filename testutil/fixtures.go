package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Sample persisted values, in the layout the chat store writes
const (
	SampleIndexJSON = `[` +
		`{"id":"1710495045123","documentId":"doc1","firstMessage":"report.pdf","timestamp":"2024-03-15T09:30:46.000Z","messageCount":3,"filename":"report.pdf"},` +
		`{"id":"1710400000000","documentId":"doc2","firstMessage":"What is the budget?","timestamp":"2024-03-14T07:06:41.000Z","messageCount":2}` +
		`]`

	SampleTranscriptDoc1JSON = `[` +
		`{"id":1710495045123,"text":"Hello, I am your AI assistant. How can I help you with your project?","sender":"bot","timestamp":"2024-03-15T09:30:45.123Z","documentId":"doc1"},` +
		`{"id":1710495045500,"text":"Summarize chapter 2","sender":"user","timestamp":"2024-03-15T09:30:45.500Z","documentId":"doc1"},` +
		`{"id":1710495046000,"text":"Chapter 2 covers the rollout plan.","sender":"bot","timestamp":"2024-03-15T09:30:46.000Z","documentId":"doc1"}` +
		`]`

	SampleTranscriptDoc2JSON = `[` +
		`{"id":1710400000000,"text":"What is the budget?","sender":"user","timestamp":"2024-03-14T07:06:40.000Z","documentId":"doc2"},` +
		`{"id":1710400001000,"text":"The budget is 40k.","sender":"bot","timestamp":"2024-03-14T07:06:41.000Z","documentId":"doc2"}` +
		`]`

	SampleHistoryJSON = `[` +
		`{"id":1,"text":"Document selected: report.pdf","sender":"bot","timestamp":"2024-03-15T09:30:45.000Z"}` +
		`]`
)

// SampleKV returns the sample store contents keyed as the chat store expects
func SampleKV() map[string]string {
	return map[string]string{
		"allChatSessions":           SampleIndexJSON,
		"chatSession_1710495045123": SampleTranscriptDoc1JSON,
		"chatSession_1710400000000": SampleTranscriptDoc2JSON,
		"chatHistory":               SampleHistoryJSON,
	}
}

// CreateSQLiteFixture creates a SQLite store file holding the sample sessions
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for key, value := range SampleKV() {
		InsertKV(t, db, key, value)
	}
}

// CreateConfigFixture writes a config file and returns its path
func CreateConfigFixture(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}
