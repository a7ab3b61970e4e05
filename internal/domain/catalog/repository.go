package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines catalog data access
type Repository interface {
	ListActive(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	SetImages(ctx context.Context, id int64, imageURL, thumbnailURL string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates catalog repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const itemColumns = `id, name, description, price, bonus_amount, is_active, image_url, thumbnail_url, created_at, updated_at`

func (r *repository) ListActive(ctx context.Context) ([]*Item, error) {
	items := []*Item{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM catalog_items WHERE is_active = TRUE ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository list: %w", err)
	}
	return items, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := r.db.GetContext(ctx, &item, `SELECT `+itemColumns+` FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("catalog repository get: %w", err)
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO catalog_items (name, description, price, bonus_amount, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		item.Name, item.Description, item.Price, item.BonusAmount, item.IsActive, item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("catalog repository create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE catalog_items
		SET name = $1, description = $2, price = $3, bonus_amount = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		item.Name, item.Description, item.Price, item.BonusAmount, item.IsActive, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("catalog repository update: %w", err)
	}
	return requireRow(res)
}

func (r *repository) SetImages(ctx context.Context, id int64, imageURL, thumbnailURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE catalog_items SET image_url = $1, thumbnail_url = $2 WHERE id = $3`,
		imageURL, thumbnailURL, id)
	if err != nil {
		return fmt.Errorf("catalog repository set images: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog repository rows affected: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}
