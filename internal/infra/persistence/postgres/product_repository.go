package postgres

import (
	"context"

	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/repository"
	"farmchain/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements repository.ProductRepository using GORM.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository returns the repository as a repository.ProductRepository interface.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// Create appends a product row. Ids are generated here so concurrent creators
// never collide.
func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate product id")
		}
		product.ID = id
	}

	productM := fromProductDomain(product)
	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("product violates table constraints")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUnauthorized.WrapMessage("creator does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.CreatedAt = productM.CreatedAt

	return nil
}

// FindByID retrieves one product by primary key.
func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&productM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find product by id")
	}

	return toProductDomain(&productM), nil
}

// List loads every product in insertion order.
func (repo *productRepository) List(ctx context.Context) ([]*entity.Product, error) {
	var rows []*model.ProductModel
	if err := repo.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, toProductDomain(row))
	}

	return products, nil
}

func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	return &entity.Product{
		ID:        data.ID,
		Name:      data.Name,
		Price:     data.Price,
		Farmer:    data.Farmer,
		CreatedBy: data.CreatedBy,
		CreatedAt: data.CreatedAt,
	}
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	if data == nil {
		return nil
	}

	return &model.ProductModel{
		ID:        data.ID,
		Name:      data.Name,
		Price:     data.Price,
		Farmer:    data.Farmer,
		CreatedBy: data.CreatedBy,
		CreatedAt: data.CreatedAt,
	}
}
