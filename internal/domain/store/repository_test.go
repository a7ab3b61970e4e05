package store_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/domain/store"
	"github.com/upro/upro-api/internal/pkg/database/dbtest"
)

type sqliteFixture struct {
	db        *sqlx.DB
	repo      store.Repository
	svc       *store.Service
	accountID uuid.UUID
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()
	db := dbtest.NewSQLite(t)
	dbtest.SeedItem(t, db, 1, 30, 50, true)
	dbtest.SeedItem(t, db, 2, 60, 0, true)
	dbtest.SeedItem(t, db, 16, 100, 50, true)
	dbtest.SeedItem(t, db, 17, 1000, 500, true)

	repo := store.NewRepository(db)
	items := catalog.NewService(catalog.NewRepository(db), catalog.NewRedisCache(nil, time.Minute), nil, nil, 0)
	return &sqliteFixture{
		db:        db,
		repo:      repo,
		svc:       store.NewService(repo, items, nil, nil, store.DefaultConfig()),
		accountID: dbtest.SeedAccount(t, db),
	}
}

func (f *sqliteFixture) countRecords(t *testing.T, profileID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM purchase_records WHERE profile_id = $1`, profileID))
	return n
}

func TestRepositorySettlesScenario(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 100)
	ctx := context.Background()

	settlement, err := f.svc.Purchase(ctx, store.PurchaseRequest{ProfileID: profileID, ItemID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(120), settlement.NewBalance)

	balance, err := f.repo.GetBalance(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)
	assert.Equal(t, 1, f.countRecords(t, profileID))

	poor := dbtest.SeedProfile(t, f.db, f.accountID, 20)
	_, err = f.svc.Purchase(ctx, store.PurchaseRequest{ProfileID: poor, ItemID: 1})
	assert.ErrorIs(t, err, store.ErrInsufficientFunds)
	assert.Equal(t, 0, f.countRecords(t, poor))
}

func TestRepositoryGetBalanceMissingProfile(t *testing.T) {
	f := newSQLiteFixture(t)
	_, err := f.repo.GetBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestRepositoryCompareAndSet(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 100)
	ctx := context.Background()

	err := f.repo.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CompareAndSetBalance(ctx, profileID, 99, 0)
	})
	assert.ErrorIs(t, err, store.ErrBalanceConflict)

	err = f.repo.WithinTx(ctx, func(tx store.Tx) error {
		return tx.CompareAndSetBalance(ctx, profileID, 100, -1)
	})
	assert.ErrorIs(t, err, store.ErrBalanceWriteFailed, "CHECK (balance >= 0) must reject negative balances")

	balance, err := f.repo.GetBalance(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestRepositoryRollsBackRecordWhenBalanceWriteFails(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 100)
	ctx := context.Background()

	err := f.repo.WithinTx(ctx, func(tx store.Tx) error {
		p := &store.Purchase{
			ID: uuid.New(), ProfileID: profileID, ItemID: 1, Cost: 30, Bonus: 50,
			Quantity: 1, BalanceAfter: 120, CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertPurchase(ctx, p); err != nil {
			return err
		}
		// Observed balance is stale, so the conditional write loses.
		return tx.CompareAndSetBalance(ctx, profileID, 90, 120)
	})
	require.ErrorIs(t, err, store.ErrBalanceConflict)
	assert.Equal(t, 0, f.countRecords(t, profileID), "record must roll back with the failed balance write")
}

func TestRepositoryDuplicateIdempotencyKey(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 100)
	ctx := context.Background()
	key := "retry-7"

	insert := func() error {
		return f.repo.WithinTx(ctx, func(tx store.Tx) error {
			return tx.InsertPurchase(ctx, &store.Purchase{
				ID: uuid.New(), ProfileID: profileID, ItemID: 16, Quantity: 1,
				Bonus: 50, BalanceAfter: 150, IdempotencyKey: &key, CreatedAt: time.Now().UTC(),
			})
		})
	}
	require.NoError(t, insert())
	assert.True(t, errors.Is(insert(), store.ErrDuplicateIdempotencyKey))

	found, err := f.repo.FindPurchaseByKey(ctx, profileID, key)
	require.NoError(t, err)
	assert.Equal(t, int64(16), found.ItemID)

	_, err = f.repo.FindPurchaseByKey(ctx, profileID, "unknown")
	assert.ErrorIs(t, err, store.ErrPurchaseNotFound)
}

func TestRepositoryIdempotentReplayThroughService(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 100)
	ctx := context.Background()

	req := store.PurchaseRequest{ProfileID: profileID, ItemID: 1, IdempotencyKey: "k-1"}
	first, err := f.svc.Purchase(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.Purchase(ctx, req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Purchase.ID, second.Purchase.ID)
	assert.Equal(t, 1, f.countRecords(t, profileID))
}

func TestRepositoryListPurchasesNewestFirst(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 1200)
	ctx := context.Background()

	for _, itemID := range []int64{16, 17, 16} {
		_, err := f.svc.Purchase(ctx, store.PurchaseRequest{ProfileID: profileID, ItemID: itemID})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := f.svc.ListPurchases(ctx, profileID, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{600, 650, 1150}, []int64{all[0].BalanceAfter, all[1].BalanceAfter, all[2].BalanceAfter})

	page, err := f.svc.ListPurchases(ctx, profileID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(650), page[0].BalanceAfter)
}

func TestRepositoryGrant(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 0)

	grant, err := f.svc.Grant(context.Background(), store.GrantRequest{
		ProfileID: profileID, Amount: 250, Reason: "launch gift", GrantedBy: f.accountID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), grant.BalanceAfter)

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM balance_grants WHERE profile_id = $1`, profileID))
	assert.Equal(t, 1, n)
}

func TestRepositoryMemberCannotMintGold(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := f.svc.Purchase(ctx, store.PurchaseRequest{ProfileID: profileID, ItemID: 17})
		require.ErrorIs(t, err, store.ErrInsufficientFunds)
	}

	balance, err := f.repo.GetBalance(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	assert.Equal(t, 0, f.countRecords(t, profileID))

	_, err = f.db.Exec(`INSERT INTO catalog_items (id, name, price, bonus_amount) VALUES ($1, $2, $3, $4)`, 99, "Free gold", 0, 500)
	assert.Error(t, err, "schema must reject bonus items without a price")
}

func TestRepositoryGrantOverflowIsInputError(t *testing.T) {
	f := newSQLiteFixture(t)
	profileID := dbtest.SeedProfile(t, f.db, f.accountID, 10)

	_, err := f.svc.Grant(context.Background(), store.GrantRequest{
		ProfileID: profileID, Amount: math.MaxInt64, Reason: "overflow", GrantedBy: f.accountID,
	})
	require.ErrorIs(t, err, store.ErrInvalidAmount)
	assert.NotErrorIs(t, err, store.ErrRecordWriteFailed)

	balance, err := f.repo.GetBalance(context.Background(), profileID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}
