package profile

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles profile business logic
type Service struct {
	repo Repository
}

// NewService creates profile service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a profile to the account. New profiles hold no gold.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req *CreateRequest) (*Profile, error) {
	now := time.Now().UTC()
	p := &Profile{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      strings.TrimSpace(req.Name),
		Gender:    req.Gender,
		AgeGroup:  req.AgeGroup,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", accountID.String()).
		Str("profile_id", p.ID.String()).
		Msg("profile created")
	return p, nil
}

// ListByAccount returns the account's profiles, oldest first
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Profile, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Get returns a profile owned by accountID
func (s *Service) Get(ctx context.Context, accountID, profileID uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(accountID) {
		return nil, ErrNotProfileOwner
	}
	return p, nil
}

// OwnerOf returns the account that owns profileID
func (s *Service) OwnerOf(ctx context.Context, profileID uuid.UUID) (uuid.UUID, error) {
	p, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.AccountID, nil
}
