// Package memory содержит хранилище пользователей в памяти процесса для локального запуска и тестов.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/repositories"
	"credkeeper/pkg/logger"
)

// UserRepository хранит пользователей в map по email.
// Записи копируются на входе и выходе, поэтому вызывающий код не держит ссылок на внутреннее состояние.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entities.User
	now   func() time.Time
}

// NewUserRepository создает пустое хранилище.
func NewUserRepository() repositories.UserRepository {
	return &UserRepository{
		users: make(map[string]entities.User),
		now:   time.Now,
	}
}

// Create сохраняет пользователя, если email еще свободен.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		logger.Log(ctx).Debug(ctx, "email already taken", zap.String("email", user.Email))
		return nil, fmt.Errorf("error creating user: %w", services.ErrEmailAlreadyExists)
	}

	now := r.now().UTC()
	stored := entities.User{
		ID:           uuid.NewString(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.Email] = stored

	return clone(stored), nil
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[email]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return clone(stored), nil
}

// FindByEmailAndResetToken находит пользователя по паре email и токен сброса.
func (r *UserRepository) FindByEmailAndResetToken(_ context.Context, email, resetToken string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[email]
	if !ok || resetToken == "" || stored.ResetToken != resetToken {
		return nil, entities.ErrUserNotFound
	}
	return clone(stored), nil
}

// Update заменяет запись пользователя целиком.
func (r *UserRepository) Update(_ context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.Email]
	if !ok || current.ID != user.ID {
		return nil, entities.ErrUserNotFound
	}

	next := *clone(*user)
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = r.now().UTC()
	r.users[user.Email] = next

	return clone(next), nil
}

// SetResetToken меняет только токен сброса и срок его действия.
func (r *UserRepository) SetResetToken(_ context.Context, email, resetToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[email]
	if !ok {
		return entities.ErrUserNotFound
	}

	current.SetResetToken(resetToken, expiresAt.UTC())
	current.UpdatedAt = r.now().UTC()
	r.users[email] = current
	return nil
}

// Ping всегда успешен.
func (r *UserRepository) Ping(context.Context) error {
	return nil
}

func clone(user entities.User) *entities.User {
	if user.ResetTokenExpiry != nil {
		expiry := *user.ResetTokenExpiry
		user.ResetTokenExpiry = &expiry
	}
	return &user
}
