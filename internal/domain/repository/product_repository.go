package repository

import (
	"context"
	"errors"

	"farmchain/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the persistence operations for listings.
type ProductRepository interface {
	// Create appends a product.
	Create(ctx context.Context, product *entity.Product) error

	// FindByID looks up a single product.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	// List returns every product ordered by creation time, then id.
	List(ctx context.Context) ([]*entity.Product, error)
}
