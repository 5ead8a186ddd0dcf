package usecase

import (
	"context"

	"farmchain/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateProductInput defines a new listing. Price is a pointer so a missing
// value can be told apart from zero.
type CreateProductInput struct {
	Name   string
	Price  *float64
	Farmer string
}

// ProductUsecase defines the catalog operations.
type ProductUsecase interface {
	Create(ctx context.Context, input CreateProductInput, createdBy uuid.UUID) (*entity.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}
