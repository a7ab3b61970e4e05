package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SeedAccount inserts a member account and returns its id
func SeedAccount(t testing.TB, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, id.String()+"@example.com", "x", "member", now, now)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return id
}

// SeedProfile inserts a profile holding balance gold and returns its id
func SeedProfile(t testing.TB, db *sqlx.DB, accountID uuid.UUID, balance int64) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO profiles (id, account_id, name, gender, age_group, balance, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, accountID, "Player", "other", 20, balance, now, now)
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return id
}

// SeedItem inserts a catalog item with an explicit id
func SeedItem(t testing.TB, db *sqlx.DB, id, price, bonus int64, active bool) {
	t.Helper()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO catalog_items (id, name, description, price, bonus_amount, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, "Item", "", price, bonus, active, now, now)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
}
