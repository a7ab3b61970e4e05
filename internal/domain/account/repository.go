package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/upro/upro-api/internal/pkg/database"
)

// Repository defines account data access
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates account repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.Email, a.PasswordHash, a.Role, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("account repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.get(ctx, `SELECT id, email, password_hash, role, created_at, updated_at FROM accounts WHERE id = $1`, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.get(ctx, `SELECT id, email, password_hash, role, created_at, updated_at FROM accounts WHERE email = $1`, email)
}

func (r *repository) get(ctx context.Context, query string, arg interface{}) (*Account, error) {
	var a Account
	if err := r.db.GetContext(ctx, &a, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("account repository get: %w", err)
	}
	return &a, nil
}
