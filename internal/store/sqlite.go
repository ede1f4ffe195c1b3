// ABOUTME: SQLite implementation of the store interfaces using modernc.org/sqlite
// ABOUTME: Opens the database, creates the schema, and runs idempotent migrations

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the store interfaces using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS guests (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'customer',
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL,

			CHECK (role IN ('viewer', 'customer', 'operator', 'admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_guests_email ON guests(email);

		CREATE TABLE IF NOT EXISTS rooms (
			id            TEXT PRIMARY KEY,
			slug          TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			floor         INTEGER NOT NULL DEFAULT 0,
			type          TEXT,
			tagline       TEXT,
			desc_short    TEXT,
			desc_long     TEXT,
			tags_json     TEXT,
			allowed_plans TEXT NOT NULL DEFAULT '[]',
			web_url       TEXT,
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    TEXT NOT NULL,

			CHECK (status IN ('active', 'hidden'))
		);

		CREATE INDEX IF NOT EXISTS idx_rooms_slug ON rooms(slug);
		CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);

		CREATE TABLE IF NOT EXISTS room_keys (
			id         TEXT PRIMARY KEY,
			guest_id   TEXT NOT NULL REFERENCES guests(id),
			room_id    TEXT NOT NULL REFERENCES rooms(id),
			plan       TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'active',
			issued_at  TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			revoked_at TEXT,

			CHECK (status IN ('active', 'expired', 'revoked')),
			CHECK (expires_at > issued_at)
		);

		CREATE INDEX IF NOT EXISTS idx_room_keys_guest_room ON room_keys(guest_id, room_id);
		CREATE INDEX IF NOT EXISTS idx_room_keys_status ON room_keys(status);

		CREATE TABLE IF NOT EXISTS entry_logs (
			id         TEXT PRIMARY KEY,
			guest_id   TEXT REFERENCES guests(id),
			room_id    TEXT NOT NULL REFERENCES rooms(id),
			action     TEXT NOT NULL,
			allow      INTEGER NOT NULL,
			reason     TEXT NOT NULL,
			ip         TEXT,
			user_agent TEXT,
			ts         TEXT NOT NULL,

			CHECK (reason IN ('success', 'no_auth', 'no_key', 'expired', 'wrong_plan', 'revoked'))
		);

		CREATE INDEX IF NOT EXISTS idx_entry_logs_ts ON entry_logs(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_entry_logs_room ON entry_logs(room_id);
		CREATE INDEX IF NOT EXISTS idx_entry_logs_guest ON entry_logs(guest_id);

		CREATE TABLE IF NOT EXISTS change_log (
			id        TEXT PRIMARY KEY,
			actor     TEXT NOT NULL,
			action    TEXT NOT NULL,
			entity    TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			field     TEXT,
			old_value TEXT,
			new_value TEXT,
			ts        TEXT NOT NULL,

			CHECK (action IN ('CREATE', 'UPDATE', 'DELETE'))
		);

		CREATE INDEX IF NOT EXISTS idx_change_log_ts ON change_log(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_change_log_entity ON change_log(entity, entity_id);

		CREATE TABLE IF NOT EXISTS case_records (
			id          TEXT PRIMARY KEY,
			case_number TEXT NOT NULL UNIQUE,
			filed_on    TEXT NOT NULL,
			status      TEXT NOT NULL,
			parties     TEXT NOT NULL,
			notes       TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			deleted_at  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_case_records_number ON case_records(case_number);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	migrations := []struct {
		check  string // Query to check if migration is needed
		apply  string // Query to apply the migration
		column string // Column name for logging
		table  string
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('entry_logs') WHERE name = 'user_agent'`,
			apply:  `ALTER TABLE entry_logs ADD COLUMN user_agent TEXT`,
			column: "user_agent",
			table:  "entry_logs",
		},
		{
			check:  `SELECT 1 FROM pragma_table_info('case_records') WHERE name = 'notes'`,
			apply:  `ALTER TABLE case_records ADD COLUMN notes TEXT`,
			column: "notes",
			table:  "case_records",
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == nil {
			// Column already exists, skip
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to %s: %w", m.column, m.table, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", m.table)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise. Used by the case service so data and audit rows land
// together or not at all.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// nullString returns nil for empty strings, otherwise the string
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// marshalStrings encodes a string slice as a JSON text column, never nil.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshaling string list: %w", err)
	}
	return string(data), nil
}

// unmarshalStrings decodes a JSON text column into a string slice.
// NULL or empty decodes to an empty slice.
func unmarshalStrings(raw *string) ([]string, error) {
	if raw == nil || *raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		return nil, fmt.Errorf("unmarshaling string list: %w", err)
	}
	return values, nil
}

// Ensure SQLiteStore implements the store interfaces
var (
	_ GuestStore     = (*SQLiteStore)(nil)
	_ RoomStore      = (*SQLiteStore)(nil)
	_ KeyStore       = (*SQLiteStore)(nil)
	_ EntryLogStore  = (*SQLiteStore)(nil)
	_ ChangeLogStore = (*SQLiteStore)(nil)
	_ CaseStore      = (*SQLiteStore)(nil)
)
