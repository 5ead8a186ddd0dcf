// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"farmchain/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to create an account.
type RegisterInput struct {
	Username string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput carries the issued access token.
type LoginOutput struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *entity.User
}

// CredentialUsecase owns account creation and password login.
type CredentialUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
}
