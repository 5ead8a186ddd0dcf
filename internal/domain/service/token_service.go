package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid covers bad signatures, wrong algorithms and malformed tokens.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenExpired is returned once the current time reaches the token expiry.
	ErrTokenExpired = errors.New("token is expired")
)

// TokenService issues and validates signed, time-bounded access tokens.
type TokenService interface {
	// Issue creates an access token for userID and returns its expiry instant.
	Issue(userID uuid.UUID) (token string, expiresAt time.Time, err error)

	// Validate verifies token and returns the user id it was issued for.
	// Errors wrap ErrTokenInvalid or ErrTokenExpired.
	Validate(token string) (uuid.UUID, error)
}
