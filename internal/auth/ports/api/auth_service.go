package api

import (
	"context"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
)

// AuthUseCase определяет основной порт для регистрации и входа.
type AuthUseCase interface {
	Signup(ctx context.Context, email, password string) (*entities.User, error)

	Login(ctx context.Context, email, password string) (*services.Session, error)
}
