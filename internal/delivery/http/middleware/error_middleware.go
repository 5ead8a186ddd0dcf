package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "farmchain/internal/delivery/context"
	"farmchain/internal/delivery/http/response"
	domainerrors "farmchain/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware renders every error that reaches echo as an ErrorBody.
type ErrorMiddleware struct {
	logger *slog.Logger
}

func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError is installed as echo's HTTPErrorHandler. Internal failures
// are logged with their cause and answered with a generic message.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := m.classify(err, c)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = response.Error(c, status, body.Code, body.Message, body.Details)
	}
	if writeErr != nil {
		m.log(c).Error("Failed to write error response", slog.Any("error", writeErr))
	}
}

func (m *ErrorMiddleware) classify(err error, c echo.Context) (int, response.ErrorBody) {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logInternal(c, err)
		}

		return appErr.HTTPCode(), response.ErrorBody{
			Message: appErr.Message(),
			Code:    appErr.ErrorCode(),
			Details: appErr.Details(),
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return m.classifyHTTPError(httpErr, c)
	}

	m.logInternal(c, err)

	return http.StatusInternalServerError, internalErrorBody()
}

func (m *ErrorMiddleware) classifyHTTPError(httpErr *echo.HTTPError, c echo.Context) (int, response.ErrorBody) {
	switch httpErr.Code {
	case http.StatusNotFound:
		return http.StatusNotFound, response.ErrorBody{
			Message: domainerrors.ErrNotFound.Message(),
			Code:    domainerrors.ErrNotFound.ErrorCode(),
		}
	case http.StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed, response.ErrorBody{
			Message: http.StatusText(http.StatusMethodNotAllowed),
			Code:    "METHOD_NOT_ALLOWED",
		}
	case http.StatusRequestEntityTooLarge:
		return http.StatusRequestEntityTooLarge, response.ErrorBody{
			Message: http.StatusText(http.StatusRequestEntityTooLarge),
			Code:    "PAYLOAD_TOO_LARGE",
		}
	case http.StatusUnsupportedMediaType:
		return http.StatusUnsupportedMediaType, response.ErrorBody{
			Message: http.StatusText(http.StatusUnsupportedMediaType),
			Code:    "UNSUPPORTED_MEDIA_TYPE",
		}
	}

	if httpErr.Code >= http.StatusBadRequest && httpErr.Code < http.StatusInternalServerError {
		// Bind failures and other client errors surface as validation failures.
		return http.StatusBadRequest, response.ErrorBody{
			Message: domainerrors.ErrValidationFailed.Message(),
			Code:    domainerrors.ErrValidationFailed.ErrorCode(),
			Details: "malformed request body",
		}
	}

	m.logInternal(c, httpErr)

	return http.StatusInternalServerError, internalErrorBody()
}

func (m *ErrorMiddleware) logInternal(c echo.Context, err error) {
	m.log(c).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.LoggerOrDefault(c.Request().Context(), m.logger)
}

func internalErrorBody() response.ErrorBody {
	return response.ErrorBody{
		Message: domainerrors.ErrInternalError.Message(),
		Code:    domainerrors.ErrInternalError.ErrorCode(),
	}
}
