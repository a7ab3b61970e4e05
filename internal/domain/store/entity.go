package store

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is an append-only record of one settled purchase
type Purchase struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfileID      uuid.UUID `db:"profile_id" json:"profile_id"`
	ItemID         int64     `db:"item_id" json:"item_id"`
	Cost           int64     `db:"cost" json:"cost"`
	Bonus          int64     `db:"bonus" json:"bonus"`
	Quantity       int       `db:"quantity" json:"quantity"`
	BalanceAfter   int64     `db:"balance_after" json:"balance_after"`
	IdempotencyKey *string   `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Grant is an administrative credit to a profile balance
type Grant struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ProfileID    uuid.UUID `db:"profile_id" json:"profile_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Reason       string    `db:"reason" json:"reason"`
	GrantedBy    uuid.UUID `db:"granted_by" json:"granted_by"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Settlement is the outcome of a purchase
type Settlement struct {
	Purchase     *Purchase
	NewBalance   int64
	BonusGranted int64
	// Replayed is set when an idempotency key matched an earlier purchase
	// and no new writes were made.
	Replayed bool
}

// PurchaseRequest asks to buy one unit of ItemID for ProfileID
type PurchaseRequest struct {
	ProfileID      uuid.UUID
	ItemID         int64
	IdempotencyKey string
}

// GrantRequest credits Amount gold to ProfileID
type GrantRequest struct {
	ProfileID uuid.UUID
	Amount    int64
	Reason    string
	GrantedBy uuid.UUID
}
