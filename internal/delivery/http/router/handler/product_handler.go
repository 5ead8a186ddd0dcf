package handler

import (
	"net/http"

	"farmchain/internal/delivery/http/middleware"
	"farmchain/internal/delivery/http/response"
	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type createProductRequest struct {
	Name   string   `json:"name" validate:"required,max=255"`
	Price  *float64 `json:"price" validate:"required,gte=0"`
	Farmer string   `json:"farmer" validate:"required,max=255"`
}

type productResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  float64   `json:"price"`
	Farmer string    `json:"farmer"`
}

// ProductHandler serves the catalog.
type ProductHandler struct {
	uc usecase.ProductUsecase
}

func NewProductHandler(uc usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List handles GET /api/products.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.uc.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	body := make([]productResponse, 0, len(products))
	for _, p := range products {
		body = append(body, toProductResponse(p))
	}

	return c.JSON(http.StatusOK, body)
}

// Get handles GET /api/products/:id. A malformed id cannot name a product, so
// it is reported as not found too.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrNotFound
	}

	product, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toProductResponse(product))
}

// Create handles POST /api/products. It runs behind AuthMiddleware.Authenticate.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.uc.Create(c.Request().Context(), usecase.CreateProductInput{
		Name:   req.Name,
		Price:  req.Price,
		Farmer: req.Farmer,
	}, userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusCreated, "Product created successfully")
}

func toProductResponse(p *entity.Product) productResponse {
	return productResponse{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Farmer: p.Farmer,
	}
}
