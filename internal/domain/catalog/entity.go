package catalog

import "time"

// Item is a purchasable catalog entry. BonusAmount is the extra gold credited
// on purchase (gold packs carry a bonus, ordinary items carry none).
type Item struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Price        int64     `db:"price" json:"price"`
	BonusAmount  int64     `db:"bonus_amount" json:"bonus_amount"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	ThumbnailURL *string   `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GivesFreeGold reports whether buying the item credits gold without costing any
func (i *Item) GivesFreeGold() bool {
	return i.Price == 0 && i.BonusAmount > 0
}
