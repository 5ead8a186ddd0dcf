// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"farmchain/config"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the bcrypt input limit; longer inputs would be truncated.
const maxPasswordBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds the hasher with the configured cost.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost builds the hasher with an explicit cost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password.
// bcrypt draws a random salt per call and embeds it in the output.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", domainerrors.ErrValidationFailed.WithDetails("password must be at most 72 bytes")
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt.GenerateFromPassword")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash in constant time.
// Inputs longer than 72 bytes never match, since bcrypt compares only their prefix.
func (h *bcryptHasher) Check(password, hash string) bool {
	if len(password) > maxPasswordBytes {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
