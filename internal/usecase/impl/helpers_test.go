package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"farmchain/internal/domain/entity"
	domainerrors "farmchain/internal/domain/errors"
	"farmchain/internal/domain/repository"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func float64Ptr(v float64) *float64 {
	return &v
}

// memoryUserStore mimics the users table, including its unique index.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*entity.User)}
}

func (s *memoryUserStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (s *memoryUserStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return domainerrors.ErrUsernameTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	s.users[user.Username] = &clone

	return nil
}

func (s *memoryUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.users)
}

// memoryTxManager runs fn without isolation so racing registrations all pass
// the lookup and only the unique index stops them.
type memoryTxManager struct {
	users *memoryUserStore
}

func (m *memoryTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *memoryTxManager) UserRepo() repository.UserRepository {
	return m.users
}

func (m *memoryTxManager) ProductRepo() repository.ProductRepository {
	return nil
}
