package profile

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for a profile
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile is a player identity under an account. Balance is the gold held,
// written only by the store.
type Profile struct {
	ID        uuid.UUID `db:"id"`
	AccountID uuid.UUID `db:"account_id"`
	Name      string    `db:"name"`
	Gender    string    `db:"gender"`
	AgeGroup  int       `db:"age_group"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsOwnedBy reports whether accountID owns the profile
func (p *Profile) IsOwnedBy(accountID uuid.UUID) bool {
	return p.AccountID == accountID
}
