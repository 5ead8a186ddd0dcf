package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "farmchain/internal/delivery/context"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/service"
	"farmchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type accessGate struct {
	tokenService service.TokenService
	logger       *slog.Logger
}

func NewAccessGate(tokenService service.TokenService, logger *slog.Logger) usecase.AccessGate {
	return &accessGate{
		tokenService: tokenService,
		logger:       logger,
	}
}

// Authorize returns the user a token was issued to. Every failure collapses to
// ErrUnauthorized; the underlying reason is only logged.
func (g *accessGate) Authorize(ctx context.Context, token string) (uuid.UUID, error) {
	if strings.TrimSpace(token) == "" {
		return uuid.Nil, domainerrors.ErrUnauthorized.WrapMessage("missing access token")
	}

	userID, err := g.tokenService.Validate(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, service.ErrTokenExpired) {
			reason = "expired"
		}
		deliverycontext.LoggerOrDefault(ctx, g.logger).Debug("Access token rejected", slog.String("reason", reason))

		return uuid.Nil, domainerrors.ErrUnauthorized.WrapMessage(reason + " access token")
	}

	return userID, nil
}
