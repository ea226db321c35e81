package middleware

import (
	"github.com/gofiber/fiber/v3"

	"credkeeper/internal/auth/i18n"
	"credkeeper/pkg/logger"
)

// NewRequestIDMiddleware принимает X-Request-ID клиента или генерирует новый и возвращает его в ответе.
// Непригодный заголовок заменяется сгенерированным идентификатором.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		id := logger.NormalizeRequestID(ctx.Get(HeaderRequestID))
		ctx.Locals(localRequestID, id)
		ctx.Set(HeaderRequestID, id)
		return ctx.Next()
	}
}

// NewLocaleMiddleware выбирает язык ответа по заголовку Accept-Language.
func NewLocaleMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		ctx.Locals(localLanguage, i18n.Match(ctx.Get(fiber.HeaderAcceptLanguage)))
		return ctx.Next()
	}
}
