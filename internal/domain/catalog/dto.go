package catalog

// CreateItemRequest for POST /admin/catalog
type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"gte=0"`
	BonusAmount int64  `json:"bonus_amount" validate:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// UpdateItemRequest for PUT /admin/catalog/{id}. Nil fields are left unchanged.
type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	BonusAmount *int64  `json:"bonus_amount" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateItemRequest) empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil && r.BonusAmount == nil && r.IsActive == nil
}
