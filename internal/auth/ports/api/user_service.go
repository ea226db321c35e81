package api

import (
	"context"

	"credkeeper/internal/auth/domain/services"
)

// UserUseCase определяет операции над аутентифицированным пользователем.
type UserUseCase interface {
	Home(ctx context.Context, identity *services.Identity) (*services.HomePayload, error)
}

// Gate проверяет заголовок авторизации запроса.
type Gate interface {
	Authenticate(ctx context.Context, authorization string) (*services.Identity, error)
}
