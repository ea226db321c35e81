package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"credkeeper/internal/auth/adapters/http/middleware"
	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
)

// errorMapping связывает ошибку домена с HTTP статусом и ключом сообщения.
type errorMapping struct {
	target error
	status int
	key    i18n.Key
}

// Порядок важен: первое совпадение errors.Is определяет ответ.
var errorMappings = []errorMapping{
	{services.ErrMissingFields, fiber.StatusBadRequest, i18n.MissingFields},
	{services.ErrInvalidPassword, fiber.StatusBadRequest, i18n.MissingFields},
	{services.ErrPasswordTooLong, fiber.StatusBadRequest, i18n.PasswordTooLong},
	{services.ErrEmailAlreadyExists, fiber.StatusBadRequest, i18n.EmailAlreadyExists},
	{entities.ErrUserNotFound, fiber.StatusBadRequest, i18n.UserNotFound},
	{services.ErrIncorrectPassword, fiber.StatusBadRequest, i18n.IncorrectPassword},
	{services.ErrInvalidOrExpiredResetToken, fiber.StatusBadRequest, i18n.InvalidOrExpiredLink},
	{services.ErrAccessDenied, fiber.StatusForbidden, i18n.AccessDenied},
	{services.ErrForbidden, fiber.StatusForbidden, i18n.InvalidToken},
}

// classify возвращает статус и ключ сообщения для ошибки.
// Неизвестные ошибки отвечают 500 с ключом fallback.
func classify(err error, overrides map[error]i18n.Key, fallback i18n.Key) (int, i18n.Key) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if key, ok := overrides[m.target]; ok {
				return m.status, key
			}
			return m.status, m.key
		}
	}
	return fiber.StatusInternalServerError, fallback
}

// sendErrorResponse отправляет локализованное сообщение об ошибке.
func sendErrorResponse(ctx fiber.Ctx, statusCode int, key i18n.Key) error {
	if err := middleware.Message(ctx, statusCode, key); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// sendJSON отправляет успешный ответ.
func sendJSON(ctx fiber.Ctx, statusCode int, body any) error {
	if err := ctx.Status(statusCode).JSON(body); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}
