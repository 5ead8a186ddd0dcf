// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"

	"farmchain/internal/delivery/http/response"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/infra/metrics"
	"farmchain/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// UserHandler serves registration and login.
type UserHandler struct {
	uc      usecase.CredentialUsecase
	metrics metrics.Recorder
}

func NewUserHandler(uc usecase.CredentialUsecase, recorder metrics.Recorder) *UserHandler {
	return &UserHandler{
		uc:      uc,
		metrics: recorder,
	}
}

// Register handles POST /api/register.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	_, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	h.metrics.RecordAuth("register", outcome(err))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusCreated, "User registered successfully")
}

// Login handles POST /api/login.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	h.metrics.RecordAuth("login", outcome(err))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, loginResponse{AccessToken: output.AccessToken})
}

// HealthCheck handles GET /health.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(req)
}

func outcome(err error) string {
	var appErr domainerrors.AppError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
