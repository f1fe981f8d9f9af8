package registration

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhwan-dev/licensegate/internal/infrastructure/config"
	"github.com/jhwan-dev/licensegate/internal/infrastructure/logging"
)

// testDB creates a temporary SQLite database with the registrations schema
// applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "registration-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE registrations (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			computer_id        TEXT NOT NULL UNIQUE,
			status             TEXT NOT NULL DEFAULT 'Pending',
			request_timestamp  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			approval_timestamp TEXT,
			notes              TEXT
		);

		CREATE INDEX idx_registrations_status ON registrations(status);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying registrations schema: %v", err)
	}

	return db
}

// testLogger returns a quiet logger for tests.
func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	}, "test")
}

// seedRegistration inserts a registration and returns it.
func seedRegistration(t *testing.T, repo Repository, computerID string) *Registration {
	t.Helper()

	reg, err := repo.CreatePending(context.Background(), computerID)
	if err != nil {
		t.Fatalf("seeding registration %s: %v", computerID, err)
	}
	return reg
}
