// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
	"credkeeper/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// Ключи значений в fiber.Ctx.Locals.
const (
	localRequestID = "request_id"
	localLanguage  = "language"
	localIdentity  = "identity"
)

// RequestContext возвращает контекст запроса с идентификатором запроса.
func RequestContext(c fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()
	if id, ok := c.Locals(localRequestID).(string); ok && id != "" {
		ctx = logger.NewRequestIDContext(ctx, id)
	}
	return ctx
}

// Language возвращает язык ответа, выбранный по Accept-Language.
func Language(c fiber.Ctx) string {
	if lang, ok := c.Locals(localLanguage).(string); ok && lang != "" {
		return lang
	}
	return i18n.Match(c.Get(fiber.HeaderAcceptLanguage))
}

// Identity возвращает личность, сохраненную NewAuthMiddleware.
func Identity(c fiber.Ctx) (*services.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(*services.Identity)
	return identity, ok && identity != nil
}

// Message отправляет ответ вида {"message": ...} с локализованным текстом.
func Message(c fiber.Ctx, status int, key i18n.Key) error {
	return c.Status(status).JSON(fiber.Map{
		"message": i18n.T(Language(c), key),
	})
}
