package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/pkg/events"
)

// ItemSource resolves catalog items. Reads must not be served from a cache
// so that price and active flag are current at settlement time.
type ItemSource interface {
	Get(ctx context.Context, id int64) (*catalog.Item, error)
}

// BalanceNotifier is told about every committed balance change
type BalanceNotifier interface {
	BalanceChanged(ctx context.Context, profileID uuid.UUID, balance int64)
}

// Config tunes conflict retries
type Config struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig returns the retry policy used in production
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// MaxGrantAmount caps a single admin credit
	MaxGrantAmount int64 = 1_000_000_000
)

// Service settles purchases against profile balances
type Service struct {
	repo      Repository
	items     ItemSource
	publisher events.Publisher
	notifier  BalanceNotifier
	cfg       Config
}

// NewService creates store service. publisher and notifier may be nil.
func NewService(repo Repository, items ItemSource, publisher events.Publisher, notifier BalanceNotifier, cfg Config) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		items:     items,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// GetBalance returns the current gold balance of a profile
func (s *Service) GetBalance(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, profileID)
}

// ListPurchases returns a page of the profile's purchases, newest first
func (s *Service) ListPurchases(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]*Purchase, error) {
	limit, offset = pageBounds(limit, offset)
	if _, err := s.repo.GetBalance(ctx, profileID); err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, profileID, limit, offset)
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Purchase buys one unit of an item.
//
// The balance is read fresh, checked against the price, and then the purchase
// record and the new balance (balance - price + bonus) are written in one
// transaction. The balance write is conditional on the balance read; if another
// settlement changed it in between, the whole attempt is retried with backoff.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*Settlement, error) {
	if req.IdempotencyKey != "" {
		settlement, err := s.replay(ctx, req)
		if err == nil || !errors.Is(err, ErrPurchaseNotFound) {
			return settlement, err
		}
	}

	item, err := s.items.Get(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrItemInactive
	}
	if item.GivesFreeGold() {
		return nil, ErrItemNotPurchasable
	}

	var key *string
	if req.IdempotencyKey != "" {
		k := req.IdempotencyKey
		key = &k
	}

	var purchase *Purchase
	err = s.retry(ctx, "purchase", req.ProfileID, func() error {
		balance, err := s.repo.GetBalance(ctx, req.ProfileID)
		if err != nil {
			return err
		}

		cost := item.Price
		if balance < cost {
			return ErrInsufficientFunds
		}
		if item.BonusAmount > math.MaxInt64-(balance-cost) {
			return ErrBalanceOverflow
		}
		next := balance - cost + item.BonusAmount

		p := &Purchase{
			ID:             uuid.New(),
			ProfileID:      req.ProfileID,
			ItemID:         item.ID,
			Cost:           cost,
			Bonus:          item.BonusAmount,
			Quantity:       1,
			BalanceAfter:   next,
			IdempotencyKey: key,
			CreatedAt:      time.Now().UTC(),
		}

		err = s.repo.WithinTx(ctx, func(tx Tx) error {
			if err := tx.InsertPurchase(ctx, p); err != nil {
				return err
			}
			return tx.CompareAndSetBalance(ctx, req.ProfileID, balance, next)
		})
		if err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if errors.Is(err, ErrDuplicateIdempotencyKey) {
		return s.replay(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("profile_id", req.ProfileID.String()).
		Str("purchase_id", purchase.ID.String()).
		Int64("item_id", purchase.ItemID).
		Int64("cost", purchase.Cost).
		Int64("bonus", purchase.Bonus).
		Int64("balance_after", purchase.BalanceAfter).
		Msg("purchase settled")

	s.afterSettle(ctx, events.SubjectPurchaseSettled, req.ProfileID, purchase.BalanceAfter, PurchaseSettledEvent{
		PurchaseID:   purchase.ID,
		ProfileID:    purchase.ProfileID,
		ItemID:       purchase.ItemID,
		Cost:         purchase.Cost,
		Bonus:        purchase.Bonus,
		BalanceAfter: purchase.BalanceAfter,
		SettledAt:    purchase.CreatedAt,
	})

	return &Settlement{
		Purchase:     purchase,
		NewBalance:   purchase.BalanceAfter,
		BonusGranted: purchase.Bonus,
	}, nil
}

// Grant credits gold to a profile through the same conditional write path
func (s *Service) Grant(ctx context.Context, req GrantRequest) (*Grant, error) {
	if req.Amount <= 0 || req.Amount > MaxGrantAmount {
		return nil, ErrInvalidAmount
	}

	var grant *Grant
	err := s.retry(ctx, "grant", req.ProfileID, func() error {
		balance, err := s.repo.GetBalance(ctx, req.ProfileID)
		if err != nil {
			return err
		}
		if req.Amount > math.MaxInt64-balance {
			return ErrBalanceOverflow
		}

		g := &Grant{
			ID:           uuid.New(),
			ProfileID:    req.ProfileID,
			Amount:       req.Amount,
			Reason:       req.Reason,
			GrantedBy:    req.GrantedBy,
			BalanceAfter: balance + req.Amount,
			CreatedAt:    time.Now().UTC(),
		}

		err = s.repo.WithinTx(ctx, func(tx Tx) error {
			if err := tx.InsertGrant(ctx, g); err != nil {
				return err
			}
			return tx.CompareAndSetBalance(ctx, req.ProfileID, balance, g.BalanceAfter)
		})
		if err != nil {
			return err
		}
		grant = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("profile_id", req.ProfileID.String()).
		Str("granted_by", req.GrantedBy.String()).
		Int64("amount", grant.Amount).
		Int64("balance_after", grant.BalanceAfter).
		Msg("balance granted")

	s.afterSettle(ctx, events.SubjectBalanceGranted, req.ProfileID, grant.BalanceAfter, BalanceGrantedEvent{
		GrantID:      grant.ID,
		ProfileID:    grant.ProfileID,
		Amount:       grant.Amount,
		Reason:       grant.Reason,
		BalanceAfter: grant.BalanceAfter,
		GrantedAt:    grant.CreatedAt,
	})

	return grant, nil
}

func (s *Service) replay(ctx context.Context, req PurchaseRequest) (*Settlement, error) {
	p, err := s.repo.FindPurchaseByKey(ctx, req.ProfileID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if p.ItemID != req.ItemID {
		return nil, ErrIdempotencyConflict
	}
	return &Settlement{
		Purchase:     p,
		NewBalance:   p.BalanceAfter,
		BonusGranted: p.Bonus,
		Replayed:     true,
	}, nil
}

// retry runs op until it succeeds, fails with anything other than
// ErrBalanceConflict, or the attempt budget is spent.
func (s *Service) retry(ctx context.Context, op string, profileID uuid.UUID, fn func() error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.InitialInterval
	expo.MaxInterval = s.cfg.MaxInterval
	expo.MaxElapsedTime = 0
	expo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(s.cfg.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err == nil || errors.Is(err, ErrBalanceConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, policy, func(err error, wait time.Duration) {
		log.Debug().
			Str("op", op).
			Str("profile_id", profileID.String()).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("balance conflict, retrying")
	})
}

func (s *Service) afterSettle(ctx context.Context, subject string, profileID uuid.UUID, balance int64, event interface{}) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		log.Warn().Err(err).Str("subject", subject).Str("profile_id", profileID.String()).Msg("failed to publish store event")
	}
	if s.notifier != nil {
		s.notifier.BalanceChanged(ctx, profileID, balance)
	}
}
