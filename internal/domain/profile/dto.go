package profile

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /profiles
type CreateRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Gender   string `json:"gender" validate:"required,gender"`
	AgeGroup int    `json:"age_group" validate:"required,gte=1,lte=99"`
}

// Response represents a profile in API responses
type Response struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	AgeGroup  int       `json:"age_group"`
	Balance   int64     `json:"balance"`
	CreatedAt string    `json:"created_at"`
}

// ResponseFromEntity converts entity to response
func ResponseFromEntity(p *Profile) Response {
	return Response{
		ID:        p.ID,
		Name:      p.Name,
		Gender:    p.Gender,
		AgeGroup:  p.AgeGroup,
		Balance:   p.Balance,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
