package catalog

import "errors"

var (
	ErrItemNotFound   = errors.New("catalog item not found")
	ErrNoChanges      = errors.New("no fields to update")
	ErrInvalidImage   = errors.New("image could not be processed")
	ErrImagesDisabled = errors.New("image storage is not configured")

	// ErrBonusWithoutPrice rejects items that would hand out gold for nothing
	ErrBonusWithoutPrice = errors.New("an item with a bonus must have a price")
)
