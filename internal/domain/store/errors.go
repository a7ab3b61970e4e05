package store

import "errors"

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrItemNotFound      = errors.New("catalog item not found")
	ErrItemInactive      = errors.New("catalog item is not for sale")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount out of range")

	// ErrItemNotPurchasable is returned for items that would credit gold at no cost
	ErrItemNotPurchasable = errors.New("catalog item cannot be purchased")

	// ErrBalanceOverflow is returned when a credit would push the balance past int64
	ErrBalanceOverflow = errors.New("balance limit exceeded")

	// ErrRecordWriteFailed and ErrBalanceWriteFailed name the write that failed.
	// Both writes share one transaction, so neither leaves partial state.
	ErrRecordWriteFailed  = errors.New("purchase record write failed")
	ErrBalanceWriteFailed = errors.New("balance write failed")

	// ErrBalanceConflict is returned when the balance kept changing under
	// the settlement until the retry budget ran out.
	ErrBalanceConflict = errors.New("balance changed concurrently")

	ErrIdempotencyConflict = errors.New("idempotency key already used for another item")

	// ErrDuplicateIdempotencyKey is returned by Tx.InsertPurchase when a
	// concurrent request settled the same key first.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	ErrPurchaseNotFound = errors.New("purchase not found")
)
