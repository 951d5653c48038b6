package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor of the existing password store.
const DefaultBcryptCost = 12

// dummyHash is compared against when no stored hash exists so that an
// unknown account costs the same as a wrong password.
var dummyHash = []byte("$2a$12$C6UzMDM.H6dfI/f/IKcEeO5v/5x6b1uNnLzaFjHJO8LZ1aOmnMHVG")

// BcryptHasher hashes and verifies passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher. Costs outside bcrypt's bounds fall back to the default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash generates a bcrypt hash for the provided password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify compares the password against the stored hash in constant time.
// A missing or malformed hash never matches.
func (h *BcryptHasher) Verify(password, encoded string) bool {
	if encoded == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
