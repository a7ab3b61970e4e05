package account

import (
	"time"

	"github.com/google/uuid"
)

// Role of an account
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Account is the login identity that owns profiles
type Account struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// IsAdmin returns true for admin accounts
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
