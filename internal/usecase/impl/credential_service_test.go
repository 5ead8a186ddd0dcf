package impl

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/repository"
	"farmchain/internal/infra/auth"
	mockRepo "farmchain/internal/mocks/repository"
	mockSvc "farmchain/internal/mocks/service"
	"farmchain/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type credentialServiceFixtures struct {
	service      usecase.CredentialUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func createTestCredentialService(t *testing.T) credentialServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)

	return credentialServiceFixtures{
		service:      NewCredentialService(txManager, userRepo, hasher, tokenService, newDiscardLogger()),
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

// expectTx runs the transaction body against txUserRepo.
func (fx credentialServiceFixtures) expectTx(t *testing.T, txUserRepo *mockRepo.MockUserRepository) {
	fx.txManager.EXPECT().
		Execute(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.EXPECT().UserRepo().Return(txUserRepo)

			return fn(factory)
		})
}

func TestCredentialService_Register_Success(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	txUserRepo := mockRepo.NewMockUserRepository(t)
	fx.expectTx(t, txUserRepo)

	txUserRepo.EXPECT().FindByUsername(ctx, "alice").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw123").Return("hashed_password", nil)
	txUserRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			user.ID = uuid.New()
		}).
		Return(nil)

	output, err := fx.service.Register(ctx, usecase.RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "alice", output.User.Username)
	assert.Equal(t, "hashed_password", output.User.PasswordHash)
	assert.NotEqual(t, uuid.Nil, output.User.ID)
}

func TestCredentialService_Register_UsernameTaken(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	txUserRepo := mockRepo.NewMockUserRepository(t)
	fx.expectTx(t, txUserRepo)

	txUserRepo.EXPECT().FindByUsername(ctx, "alice").Return(&entity.User{ID: uuid.New(), Username: "alice"}, nil)

	output, err := fx.service.Register(ctx, usecase.RegisterInput{Username: "alice", Password: "other"})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUsernameTaken))
}

func TestCredentialService_Register_UniqueViolationOnInsert(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	txUserRepo := mockRepo.NewMockUserRepository(t)
	fx.expectTx(t, txUserRepo)

	txUserRepo.EXPECT().FindByUsername(ctx, "alice").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw123").Return("hashed_password", nil)
	txUserRepo.EXPECT().Create(ctx, mock.Anything).
		Return(domainerrors.ErrUsernameTaken.WrapMessage("unique violation on users_username_key"))

	_, err := fx.service.Register(ctx, usecase.RegisterInput{Username: "alice", Password: "pw123"})
	assert.True(t, errors.Is(err, domainerrors.ErrUsernameTaken))
}

func TestCredentialService_Register_LookupFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	txUserRepo := mockRepo.NewMockUserRepository(t)
	fx.expectTx(t, txUserRepo)

	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "find user")
	txUserRepo.EXPECT().FindByUsername(ctx, "alice").Return(nil, dbErr)

	_, err := fx.service.Register(ctx, usecase.RegisterInput{Username: "alice", Password: "pw123"})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.HTTPCode())
}

func TestCredentialService_Register_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.RegisterInput
	}{
		{name: "empty username", input: usecase.RegisterInput{Username: "", Password: "pw"}},
		{name: "blank username", input: usecase.RegisterInput{Username: "   ", Password: "pw"}},
		{name: "long username", input: usecase.RegisterInput{Username: strings.Repeat("a", 51), Password: "pw"}},
		{name: "empty password", input: usecase.RegisterInput{Username: "alice", Password: ""}},
		{name: "long password", input: usecase.RegisterInput{Username: "alice", Password: strings.Repeat("p", 73)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestCredentialService(t)

			_, err := fx.service.Register(context.Background(), tt.input)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
		})
	}
}

func TestCredentialService_Login_Success(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: "hashed_password"}
	expiresAt := time.Now().Add(6 * time.Hour)

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").Return(user, nil)
	fx.hasher.EXPECT().Check("pw123", "hashed_password").Return(true)
	fx.tokenService.EXPECT().Issue(user.ID).Return("signed.token", expiresAt, nil)

	output, err := fx.service.Login(ctx, usecase.LoginInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "signed.token", output.AccessToken)
	assert.Equal(t, expiresAt, output.ExpiresAt)
	assert.Equal(t, user, output.User)
}

func TestCredentialService_Login_WrongPassword(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").
		Return(&entity.User{ID: uuid.New(), Username: "alice", PasswordHash: "hashed_password"}, nil)
	fx.hasher.EXPECT().Check("wrong", "hashed_password").Return(false)

	output, err := fx.service.Login(ctx, usecase.LoginInput{Username: "alice", Password: "wrong"})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestCredentialService_Login_UnknownUserRunsDummyCheck(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "nouser").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash(mock.Anything).Return("dummy_hash", nil).Once()
	fx.hasher.EXPECT().Check("x", "dummy_hash").Return(false).Once()

	output, err := fx.service.Login(ctx, usecase.LoginInput{Username: "nouser", Password: "x"})
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestCredentialService_Login_SameErrorForUnknownAndWrong(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").
		Return(&entity.User{ID: uuid.New(), Username: "alice", PasswordHash: "h"}, nil)
	fx.userRepo.EXPECT().FindByUsername(ctx, "nouser").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash(mock.Anything).Return("dummy_hash", nil).Maybe()
	fx.hasher.EXPECT().Check(mock.Anything, mock.Anything).Return(false)

	_, wrongErr := fx.service.Login(ctx, usecase.LoginInput{Username: "alice", Password: "wrong"})
	_, unknownErr := fx.service.Login(ctx, usecase.LoginInput{Username: "nouser", Password: "x"})

	var wrongApp, unknownApp domainerrors.AppError
	require.True(t, errors.As(wrongErr, &wrongApp))
	require.True(t, errors.As(unknownErr, &unknownApp))
	assert.Equal(t, wrongApp.HTTPCode(), unknownApp.HTTPCode())
	assert.Equal(t, wrongApp.ErrorCode(), unknownApp.ErrorCode())
	assert.Equal(t, wrongApp.Message(), unknownApp.Message())
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
}

func TestCredentialService_Login_MissingFields(t *testing.T) {
	fx := createTestCredentialService(t)

	_, err := fx.service.Login(context.Background(), usecase.LoginInput{Username: "alice"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestCredentialService_Login_IssueFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Username: "alice", PasswordHash: "h"}

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").Return(user, nil)
	fx.hasher.EXPECT().Check("pw123", "h").Return(true)
	fx.tokenService.EXPECT().Issue(user.ID).Return("", time.Time{}, errors.New("signing failed"))

	output, err := fx.service.Login(ctx, usecase.LoginInput{Username: "alice", Password: "pw123"})
	assert.Nil(t, output)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestCredentialService_ConcurrentRegistration_ExactlyOneWins(t *testing.T) {
	store := newMemoryUserStore()
	tokenService := mockSvc.NewMockTokenService(t)
	srv := NewCredentialService(
		&memoryTxManager{users: store},
		store,
		auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		tokenService,
		newDiscardLogger(),
	)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := srv.Register(context.Background(), usecase.RegisterInput{Username: "alice", Password: "pw123"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domainerrors.ErrUsernameTaken):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, store.count())
}

func TestCredentialService_RegisterThenLogin_RealHasher(t *testing.T) {
	store := newMemoryUserStore()
	tokenService := mockSvc.NewMockTokenService(t)
	srv := NewCredentialService(
		&memoryTxManager{users: store},
		store,
		auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		tokenService,
		newDiscardLogger(),
	)
	ctx := context.Background()

	registered, err := srv.Register(ctx, usecase.RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", registered.User.PasswordHash)

	tokenService.EXPECT().Issue(registered.User.ID).Return("token", time.Now().Add(time.Hour), nil).Once()

	output, err := srv.Login(ctx, usecase.LoginInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "token", output.AccessToken)

	_, err = srv.Login(ctx, usecase.LoginInput{Username: "alice", Password: "PW123"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = srv.Login(ctx, usecase.LoginInput{Username: "Alice", Password: "pw123"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestCredentialService_Login_LongPasswordSuffixRejected(t *testing.T) {
	store := newMemoryUserStore()
	tokenService := mockSvc.NewMockTokenService(t)
	srv := NewCredentialService(
		&memoryTxManager{users: store},
		store,
		auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		tokenService,
		newDiscardLogger(),
	)
	ctx := context.Background()
	password := strings.Repeat("p", 72)

	_, err := srv.Register(ctx, usecase.RegisterInput{Username: "bob", Password: password})
	require.NoError(t, err)

	_, err = srv.Login(ctx, usecase.LoginInput{Username: "bob", Password: password + "extra"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	tokenService.AssertNotCalled(t, "Issue", mock.Anything)
}
