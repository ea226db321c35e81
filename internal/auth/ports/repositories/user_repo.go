package repositories

import (
	"context"
	"time"

	"credkeeper/internal/auth/domain/entities"
)

// UserRepository определяет интерфейс для операций сохранения данных пользователем.
// Create возвращает services.ErrEmailAlreadyExists при конфликте email,
// методы поиска возвращают entities.ErrUserNotFound при отсутствии записи.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByEmailAndResetToken(ctx context.Context, email, resetToken string) (*entities.User, error)

	Update(ctx context.Context, user *entities.User) (*entities.User, error)

	// SetResetToken записывает только токен сброса и срок его действия, остальные поля не меняются.
	SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error

	Ping(ctx context.Context) error
}
