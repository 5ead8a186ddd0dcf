package impl

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	deliverycontext "farmchain/internal/delivery/context"
	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/repository"
	"farmchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const maxProductFieldLength = 255

type productService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *slog.Logger) usecase.ProductUsecase {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOrDefault(ctx, srv.logger)
}

// Create validates and stores a listing on behalf of createdBy.
func (srv *productService) Create(ctx context.Context, input usecase.CreateProductInput, createdBy uuid.UUID) (*entity.Product, error) {
	if createdBy == uuid.Nil {
		return nil, domainerrors.ErrUnauthorized
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:      input.Name,
		Price:     *input.Price,
		Farmer:    input.Farmer,
		CreatedBy: createdBy,
	}
	if err := srv.productRepo.Create(ctx, product); err != nil {
		srv.log(ctx).Error("Failed to create product", slog.Any("createdBy", createdBy), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.Any("productID", product.ID), slog.Any("createdBy", createdBy))

	return product, nil
}

// Get returns one listing. An unknown id is reported as ErrNotFound.
func (srv *productService) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, domainerrors.ErrNotFound.WrapMessage("product not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product")
	}

	return product, nil
}

// List returns the whole catalog, never nil.
func (srv *productService) List(ctx context.Context) ([]*entity.Product, error) {
	products, err := srv.productRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	if products == nil {
		products = []*entity.Product{}
	}

	return products, nil
}

func validateProductInput(input usecase.CreateProductInput) error {
	switch {
	case strings.TrimSpace(input.Name) == "":
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	case utf8.RuneCountInString(input.Name) > maxProductFieldLength:
		return domainerrors.ErrValidationFailed.WithDetails("name must be at most 255 characters")
	case strings.TrimSpace(input.Farmer) == "":
		return domainerrors.ErrValidationFailed.WithDetails("farmer is required")
	case utf8.RuneCountInString(input.Farmer) > maxProductFieldLength:
		return domainerrors.ErrValidationFailed.WithDetails("farmer must be at most 255 characters")
	case input.Price == nil:
		return domainerrors.ErrValidationFailed.WithDetails("price is required")
	case math.IsNaN(*input.Price) || math.IsInf(*input.Price, 0):
		return domainerrors.ErrValidationFailed.WithDetails("price must be a finite number")
	case *input.Price < 0:
		return domainerrors.ErrValidationFailed.WithDetails("price must not be negative")
	}

	return nil
}
