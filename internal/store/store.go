// Package store persists the ledger in SQLite. Amounts are stored as
// fixed-point decimal strings and dates as ISO-8601 text so no value ever
// passes through binary floating point.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL UNIQUE,
	current_year  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS account_types (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id    INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	name          TEXT NOT NULL,
	default_type  TEXT NOT NULL CHECK (default_type IN ('DEBIT', 'CREDIT')),
	yearly        INTEGER NOT NULL DEFAULT 0,
	UNIQUE(profile_id, name)
);

CREATE TABLE IF NOT EXISTS accounts (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id       INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	account_type_id  INTEGER NOT NULL REFERENCES account_types(id),
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	parent_id        INTEGER REFERENCES accounts(id),
	is_category      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	debit_account_id   INTEGER NOT NULL REFERENCES accounts(id),
	credit_account_id  INTEGER NOT NULL REFERENCES accounts(id),
	amount             TEXT NOT NULL,
	summary            TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	date               TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_debit ON transactions(debit_account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_credit ON transactions(credit_account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_summary ON transactions(summary);
CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_id);
`

// Store wraps the SQLite ledger database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := ensureVersion(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func ensureVersion(db *sql.DB) error {
	var ver int
	err := db.QueryRow("SELECT version FROM schema_meta LIMIT 1").Scan(&ver)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = db.Exec("INSERT INTO schema_meta (version) VALUES (?)", schemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if ver != schemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", ver, schemaVersion)
	}
	return nil
}
