package middleware

import (
	"strings"

	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/infra/metrics"
	"farmchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is the echo context key holding the authenticated user id.
const ContextKeyUserID = "userID"

const bearerPrefix = "Bearer "

// AuthMiddleware guards routes behind a valid bearer access token.
type AuthMiddleware struct {
	gate    usecase.AccessGate
	metrics metrics.Recorder
}

func NewAuthMiddleware(gate usecase.AccessGate, recorder metrics.Recorder) *AuthMiddleware {
	return &AuthMiddleware{gate: gate, metrics: recorder}
}

// Authenticate rejects the request with ErrUnauthorized before the handler runs
// unless the Authorization header carries a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			m.metrics.RecordAuth("gate", metrics.OutcomeRejected)

			return domainerrors.ErrUnauthorized.WrapMessage("missing bearer token")
		}

		userID, err := m.gate.Authorize(c.Request().Context(), token)
		if err != nil {
			m.metrics.RecordAuth("gate", metrics.OutcomeRejected)

			return err
		}

		m.metrics.RecordAuth("gate", metrics.OutcomeSuccess)
		c.Set(ContextKeyUserID, userID)

		return next(c)
	}
}

// UserID returns the id stored by Authenticate.
func UserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return userID, ok && userID != uuid.Nil
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}
