// Package context carries the per-request id and logger from the echo
// middleware down to the use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type scopeKey string

const (
	keyRequestID scopeKey = "request_id"
	keyLogger    scopeKey = "logger"

	HeaderXRequestID = echo.HeaderXRequestID
)

// Bind records requestID on c and puts logger on the request context.
func Bind(c echo.Context, requestID string, logger *slog.Logger) {
	c.Set(string(keyRequestID), requestID)

	ctx := context.WithValue(c.Request().Context(), keyLogger, logger)
	c.SetRequest(c.Request().WithContext(ctx))
}

// RequestID returns the id bound to c, or "" when Bind has not run.
func RequestID(c echo.Context) string {
	id, _ := c.Get(string(keyRequestID)).(string)

	return id
}

// LoggerOrDefault returns the request logger stored in ctx, or fallback.
func LoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
