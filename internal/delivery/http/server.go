package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"farmchain/config"
	"farmchain/internal/delivery"
	httpmiddleware "farmchain/internal/delivery/http/middleware"
	"farmchain/internal/delivery/http/router"
	"farmchain/internal/delivery/http/validator"
	"farmchain/internal/delivery/middleware"
	"farmchain/internal/domain/lifecycle"
	"farmchain/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc                fx.Lifecycle
	Cfg               *config.Config
	Logger            *slog.Logger
	MetricsMiddleware *httpmiddleware.MetricsMiddleware
	RouterParams      router.RouterParams
}

func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &httpServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		server: NewEcho(params.Cfg, params.Logger, params.MetricsMiddleware, params.RouterParams),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// NewEcho assembles the middleware chain and routes.
func NewEcho(
	cfg *config.Config,
	logger *slog.Logger,
	metricsMiddleware *httpmiddleware.MetricsMiddleware,
	routerParams router.RouterParams,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.HTTP.Timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = cfg.HTTP.Timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = cfg.HTTP.Timeouts.WriteTimeout
	e.Server.IdleTimeout = cfg.HTTP.Timeouts.IdleTimeout

	// 1. Recover first so panics become 500 responses
	e.Use(echomiddleware.Recover())

	// 2. Request ID before anything that logs
	e.Use(middleware.NewRequestIDMiddleware(logger).Process)

	// 3. Metrics, then the access log
	e.Use(metricsMiddleware.Handle)
	e.Use(middleware.NewLoggerMiddleware(logger, cfg).Handle)

	// 4. CORS
	corsConfig := echomiddleware.DefaultCORSConfig
	if len(cfg.HTTP.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORS.AllowOrigins
	}
	e.Use(echomiddleware.CORSWithConfig(corsConfig))

	// 5. Request body size limit
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize))

	e.HTTPErrorHandler = httpmiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.Validator = validator.New()

	router.NewRouter(routerParams).RegisterRoutes(e)

	return e
}

func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("host_port", hostPort))
	h2Server := &http2.Server{
		IdleTimeout: s.cfg.HTTP.Timeouts.IdleTimeout,
	}
	if err := s.server.StartH2CServer(hostPort, h2Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
