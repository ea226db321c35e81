package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
	"credkeeper/internal/auth/ports/api"
	"credkeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"
	LogAccessRejected = "access rejected"
)

// NewAuthMiddleware проверяет заголовок Authorization через gate и сохраняет личность в Locals.
// Отказ всегда отвечает 403.
func NewAuthMiddleware(gate api.Gate) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		identity, err := gate.Authenticate(requestCtx, ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			log.Debug(requestCtx, LogAccessRejected, zap.Error(err))
			key := i18n.InvalidToken
			if errors.Is(err, services.ErrAccessDenied) {
				key = i18n.AccessDenied
			}
			return Message(ctx, fiber.StatusForbidden, key)
		}

		ctx.Locals(localIdentity, identity)
		return ctx.Next()
	}
}
