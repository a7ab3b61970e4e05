package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotProfileOwner = errors.New("profile belongs to another account")
)
