package api

import (
	"context"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
)

// ResetUseCase определяет жизненный цикл токенов сброса пароля.
type ResetUseCase interface {
	RequestReset(ctx context.Context, email string) (*services.ResetRequest, error)

	Validate(ctx context.Context, email, token string) (*entities.User, error)

	Consume(ctx context.Context, user *entities.User) error

	ForgotPassword(ctx context.Context, email, lang string) error

	ResetPassword(ctx context.Context, email, token, newPassword string) error
}
