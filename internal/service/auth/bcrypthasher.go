package auth

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password hasher used when no other is configured
// Passwords are reduced with sha256 first, so bytes after bcrypt 72 bytes limit still count
type BcryptHasher struct {
	cost int
}

// Zero cost means bcrypt.DefaultCost
func NewBcryptHasher(cost int) (BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return BcryptHasher{}, fmt.Errorf("bcrypt cost must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}

	return BcryptHasher{cost: cost}, nil
}

func (h BcryptHasher) Cost() int {
	if h.cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.cost
}

func (h BcryptHasher) Hash(password string) (string, error) {
	digest := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(digest[:], h.Cost())
	return string(hash), err
}

// Constant time comparison is provided by bcrypt
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	digest := sha256.Sum256([]byte(password))
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), digest[:])
}
