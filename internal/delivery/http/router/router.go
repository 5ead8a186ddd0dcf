// Package router wires the HTTP routes onto echo.
package router

import (
	"farmchain/internal/delivery/http/middleware"
	"farmchain/internal/delivery/http/router/handler"
	"farmchain/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	ProductHandler *handler.ProductHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Collector
}

type router struct {
	userHandler    *handler.UserHandler
	productHandler *handler.ProductHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	metrics        *metrics.Collector
}

func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		productHandler: params.ProductHandler,
		authMiddleware: params.AuthMiddleware,
		rateLimiter:    params.RateLimiter,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	api := e.Group("/api")
	{
		api.POST("/register", r.userHandler.Register, r.rateLimiter.Limit)
		api.POST("/login", r.userHandler.Login, r.rateLimiter.Limit)

		api.GET("/products", r.productHandler.List)
		api.GET("/products/:id", r.productHandler.Get)
		api.POST("/products", r.productHandler.Create, r.authMiddleware.Authenticate)
	}
}
