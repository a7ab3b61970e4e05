package account

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse returned after login/register/refresh
type AuthResponse struct {
	Account AccountResponse `json:"account"`
	Tokens  TokensResponse  `json:"tokens"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// TokensResponse represents issued tokens
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds until access token expires
	TokenType    string `json:"token_type"`
}

// NewAccountResponse creates AccountResponse from entity
func NewAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}
