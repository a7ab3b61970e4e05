package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used until SetCost is called from configuration.
const DefaultCost = 12

var cost = DefaultCost

// SetCost changes the bcrypt work factor for new hashes. Existing hashes keep
// verifying at whatever cost they were created with.
func SetCost(c int) error {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d outside %d..%d", c, bcrypt.MinCost, bcrypt.MaxCost)
	}
	cost = c
	return nil
}

// Hash returns the bcrypt hash of an account password.
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify reports whether password matches hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
