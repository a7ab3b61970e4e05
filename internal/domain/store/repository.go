package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upro/upro-api/internal/pkg/database"
)

// Repository reads balances and history and opens settlement transactions
type Repository interface {
	GetBalance(ctx context.Context, profileID uuid.UUID) (int64, error)
	FindPurchaseByKey(ctx context.Context, profileID uuid.UUID, key string) (*Purchase, error)
	ListPurchases(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Purchase, error)
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx groups the writes of one settlement. They commit together or not at all.
type Tx interface {
	InsertPurchase(ctx context.Context, p *Purchase) error
	InsertGrant(ctx context.Context, g *Grant) error
	// CompareAndSetBalance writes next only if the balance still equals
	// expected. Otherwise it returns ErrBalanceConflict.
	CompareAndSetBalance(ctx context.Context, profileID uuid.UUID, expected, next int64) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates store repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBalance(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM profiles WHERE id = $1`, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("store repository get balance: %w", err)
	}
	return balance, nil
}

const purchaseColumns = `id, profile_id, item_id, cost, bonus, quantity, balance_after, idempotency_key, created_at`

func (r *repository) FindPurchaseByKey(ctx context.Context, profileID uuid.UUID, key string) (*Purchase, error) {
	var p Purchase
	err := r.db.GetContext(ctx, &p,
		`SELECT `+purchaseColumns+` FROM purchase_records WHERE profile_id = $1 AND idempotency_key = $2`,
		profileID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("store repository find purchase: %w", err)
	}
	return &p, nil
}

func (r *repository) ListPurchases(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Purchase, error) {
	purchases := []*Purchase{}
	err := r.db.SelectContext(ctx, &purchases, `
		SELECT `+purchaseColumns+`
		FROM purchase_records
		WHERE profile_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, profileID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store repository list purchases: %w", err)
	}
	return purchases, nil
}

// WithinTx runs fn in one transaction. A failure to begin is reported as
// ErrRecordWriteFailed and a failure to commit as ErrBalanceWriteFailed, so
// callers always learn which stage of the settlement did not happen.
func (r *repository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	called := false
	var fnErr error

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		called = true
		fnErr = fn(&sqlTx{tx: tx})
		return fnErr
	})
	switch {
	case err == nil:
		return nil
	case !called:
		return fmt.Errorf("%w: begin: %v", ErrRecordWriteFailed, err)
	case fnErr != nil:
		return fnErr
	default:
		return fmt.Errorf("%w: commit: %v", ErrBalanceWriteFailed, err)
	}
}

type sqlTx struct {
	tx *sqlx.Tx
}

func (t *sqlTx) InsertPurchase(ctx context.Context, p *Purchase) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchase_records (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.ProfileID, p.ItemID, p.Cost, p.Bonus, p.Quantity, p.BalanceAfter, p.IdempotencyKey, p.CreatedAt)
	if err != nil {
		if p.IdempotencyKey != nil && database.IsUniqueViolation(err) {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("%w: %v", ErrRecordWriteFailed, err)
	}
	return nil
}

func (t *sqlTx) InsertGrant(ctx context.Context, g *Grant) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO balance_grants (id, profile_id, amount, reason, granted_by, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, g.ID, g.ProfileID, g.Amount, g.Reason, g.GrantedBy, g.BalanceAfter, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: grant: %v", ErrRecordWriteFailed, err)
	}
	return nil
}

func (t *sqlTx) CompareAndSetBalance(ctx context.Context, profileID uuid.UUID, expected, next int64) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE profiles
		SET balance = $1, updated_at = $2
		WHERE id = $3 AND balance = $4
	`, next, time.Now().UTC(), profileID, expected)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBalanceWriteFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBalanceWriteFailed, err)
	}
	if n == 0 {
		return ErrBalanceConflict
	}
	return nil
}
