package store

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseSettledEvent is published on store.purchase.settled
type PurchaseSettledEvent struct {
	PurchaseID   uuid.UUID `json:"purchase_id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	ItemID       int64     `json:"item_id"`
	Cost         int64     `json:"cost"`
	Bonus        int64     `json:"bonus"`
	BalanceAfter int64     `json:"balance_after"`
	SettledAt    time.Time `json:"settled_at"`
}

// BalanceGrantedEvent is published on store.balance.granted
type BalanceGrantedEvent struct {
	GrantID      uuid.UUID `json:"grant_id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	Amount       int64     `json:"amount"`
	Reason       string    `json:"reason"`
	BalanceAfter int64     `json:"balance_after"`
	GrantedAt    time.Time `json:"granted_at"`
}
