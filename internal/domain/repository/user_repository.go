// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"farmchain/internal/domain/entity"
)

// ErrUserNotFound is returned when no user has the requested username.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the persistence operations for accounts.
type UserRepository interface {
	// FindByUsername looks up a user by exact username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create inserts a new user. A duplicate username yields domainerrors.ErrUsernameTaken.
	Create(ctx context.Context, user *entity.User) error
}
