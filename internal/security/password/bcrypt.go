// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

// DefaultCost is used when no work factor is configured.
const DefaultCost = bcrypt.DefaultCost

// MaxLength is the longest plaintext bcrypt can hash without truncation.
const MaxLength = 72

var ErrTooLong = fmt.Errorf("password exceeds %d bytes", MaxLength)

var _ core.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt implements core.PasswordHasher. The salt and cost are embedded in every hash,
// so verification needs nothing but the stored string.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using the given work factor.
// A zero cost selects DefaultCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", ErrTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify compares in constant time with respect to the plaintext; a malformed hash never matches.
func (b *Bcrypt) Verify(plaintext, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	return err == nil
}

// Cost reports the work factor embedded in hash.
func Cost(hash string) (int, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		if errors.Is(err, bcrypt.ErrHashTooShort) {
			return 0, fmt.Errorf("not a bcrypt hash: %w", err)
		}
		return 0, err
	}
	return cost, nil
}
