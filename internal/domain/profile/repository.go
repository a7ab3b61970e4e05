package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines profile data access
type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Profile, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates profile repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const profileColumns = `id, account_id, name, gender, age_group, balance, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.AccountID, p.Name, p.Gender, p.AgeGroup, p.Balance, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("profile repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile repository get: %w", err)
	}
	return &p, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Profile, error) {
	profiles := []*Profile{}
	err := r.db.SelectContext(ctx, &profiles,
		`SELECT `+profileColumns+` FROM profiles WHERE account_id = $1 ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("profile repository list: %w", err)
	}
	return profiles, nil
}
