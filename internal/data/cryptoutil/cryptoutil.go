// Package cryptoutil provides one-way secret hashing for partner credentials.
package cryptoutil

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher defines an interface for hashing and verifying credential secrets.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
	LooksHashed(value string) bool
}

// BcryptHasher implements SecretHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a BcryptHasher. Costs outside the valid bcrypt
// range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of the secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("secret is required")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(out), nil
}

// Verify reports whether the secret matches the stored hash.
func (h *BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// LooksHashed implements SecretHasher.
func (h *BcryptHasher) LooksHashed(value string) bool {
	return LooksHashed(value)
}

// LooksHashed reports whether the value already carries a bcrypt prefix.
// Secrets that already look hashed are stored as-is rather than hashed twice.
func LooksHashed(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}
