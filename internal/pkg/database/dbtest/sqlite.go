// Package dbtest provides an in-memory SQLite database with the service schema
// so repositories can be exercised without a PostgreSQL server.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE accounts (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'member',
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE profiles (
    id         TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts (id),
    name       TEXT NOT NULL,
    gender     TEXT NOT NULL,
    age_group  INTEGER NOT NULL,
    balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE catalog_items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    price         INTEGER NOT NULL CHECK (price >= 0),
    bonus_amount  INTEGER NOT NULL DEFAULT 0 CHECK (bonus_amount >= 0),
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    image_url     TEXT,
    thumbnail_url TEXT,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (price > 0 OR bonus_amount = 0)
);

CREATE TABLE purchase_records (
    id              TEXT PRIMARY KEY,
    profile_id      TEXT NOT NULL REFERENCES profiles (id),
    item_id         INTEGER NOT NULL REFERENCES catalog_items (id),
    cost            INTEGER NOT NULL CHECK (cost >= 0),
    bonus           INTEGER NOT NULL DEFAULT 0 CHECK (bonus >= 0),
    quantity        INTEGER NOT NULL DEFAULT 1 CHECK (quantity = 1),
    balance_after   INTEGER NOT NULL CHECK (balance_after >= 0),
    idempotency_key TEXT,
    created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (profile_id, idempotency_key)
);

CREATE TABLE balance_grants (
    id            TEXT PRIMARY KEY,
    profile_id    TEXT NOT NULL REFERENCES profiles (id),
    amount        INTEGER NOT NULL CHECK (amount > 0),
    reason        TEXT NOT NULL,
    granted_by    TEXT NOT NULL REFERENCES accounts (id),
    balance_after INTEGER NOT NULL CHECK (balance_after >= 0),
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// NewSQLite opens a fresh in-memory database and applies the schema.
// A single connection is used so every query sees the same memory database.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("apply sqlite schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
