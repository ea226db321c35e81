package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/api"
	"credkeeper/pkg/logger"
)

const (
	methodHome = "Home"

	msgBuildingHome    = "building user home payload"
	msgMissingIdentity = "request has no authenticated identity"
	msgHomeBuilt       = "user home payload built"

	errCtxBuildingHome = "building home payload"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct{}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
func NewUserUseCase() api.UserUseCase {
	return &UserUseCaseImpl{}
}

// Home возвращает данные, привязанные к аутентифицированной личности.
func (u *UserUseCaseImpl) Home(ctx context.Context, identity *services.Identity) (*services.HomePayload, error) {
	log := logger.Log(ctx).With(zap.String("method", methodHome))
	log.Debug(ctx, msgBuildingHome)

	if identity == nil || identity.Email == "" {
		log.Debug(ctx, msgMissingIdentity)
		return nil, fmt.Errorf("%s: %w", errCtxBuildingHome, services.ErrAccessDenied)
	}

	log.Debug(ctx, msgHomeBuilt, zap.String("email", identity.Email))
	return &services.HomePayload{Email: identity.Email}, nil
}
