package usecase

import (
	"context"

	"github.com/google/uuid"
)

// AccessGate turns a bearer token into the id of the user it proves.
type AccessGate interface {
	Authorize(ctx context.Context, token string) (uuid.UUID, error)
}
