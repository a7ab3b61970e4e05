package store

// PurchaseBody for POST /profiles/{id}/purchases
type PurchaseBody struct {
	ItemID         int64  `json:"item_id" validate:"required,gte=1"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=128"`
}

// GrantBody for POST /admin/profiles/{id}/grant
type GrantBody struct {
	Amount int64  `json:"amount" validate:"required,gte=1,lte=1000000000"`
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

// BalanceResponse is the balance query result
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// SettlementResponse is returned after a purchase
type SettlementResponse struct {
	Purchase     *Purchase `json:"purchase"`
	NewBalance   int64     `json:"new_balance"`
	BonusGranted int64     `json:"bonus_granted"`
	Replayed     bool      `json:"replayed"`
}
