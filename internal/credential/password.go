// Package credential hashes account passwords and generates the
// per-account verification secrets.
package credential

import (
	"errors"
	"fmt"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var errEmptyPassword = errors.New("empty password")

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password. Any rejection by the
// primitive (empty input, more than 72 bytes) is reported as domain.ErrHashing.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrHashing, errEmptyPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash.
func (h *Hasher) Compare(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
