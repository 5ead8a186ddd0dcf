// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	deliverycontext "farmchain/internal/delivery/context"
	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/repository"
	"farmchain/internal/domain/service"
	"farmchain/internal/usecase"

	"github.com/pkg/errors"
)

const (
	maxUsernameLength = 50
	maxPasswordBytes  = 72

	// dummyPassword feeds the comparison run for unknown usernames.
	dummyPassword = "farmchain-timing-equalizer"
)

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialService is the constructor for credentialService.
func NewCredentialService(
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) usecase.CredentialUsecase {
	return &credentialService{
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOrDefault(ctx, srv.logger)
}

// Register creates an account. The lookup, hash and insert share one
// transaction; the unique index on username settles concurrent attempts.
func (srv *credentialService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username))

	var registered *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByUsername(ctx, input.Username)
		if err == nil {
			return domainerrors.ErrUsernameTaken
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to look up username")
		}

		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}

		user := &entity.User{
			Username:     input.Username,
			PasswordHash: hash,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		registered = user

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUsernameTaken) {
			srv.log(ctx).Warn("Username already registered", slog.String("username", input.Username))
		} else {
			srv.log(ctx).Error("Failed to execute registration transaction", slog.String("username", input.Username), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to register user")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registered.ID))

	return &usecase.RegisterOutput{User: registered}, nil
}

// Login verifies the password and issues an access token. Unknown usernames and
// wrong passwords produce the same error and cost the same bcrypt work.
func (srv *credentialService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("username and password are required")
	}

	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.hasher.Check(input.Password, srv.dummyCredential())
		srv.log(ctx).Info("Login rejected", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("username", input.Username))

		return nil, domainerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", user.ID), slog.Time("expiresAt", expiresAt))

	return &usecase.LoginOutput{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (srv *credentialService) dummyCredential() string {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Warn("Failed to prepare dummy credential", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}

func validateRegisterInput(input usecase.RegisterInput) error {
	switch {
	case strings.TrimSpace(input.Username) == "":
		return domainerrors.ErrValidationFailed.WithDetails("username is required")
	case utf8.RuneCountInString(input.Username) > maxUsernameLength:
		return domainerrors.ErrValidationFailed.WithDetails("username must be at most 50 characters")
	case input.Password == "":
		return domainerrors.ErrValidationFailed.WithDetails("password is required")
	case len(input.Password) > maxPasswordBytes:
		return domainerrors.ErrValidationFailed.WithDetails("password must be at most 72 bytes")
	}

	return nil
}
