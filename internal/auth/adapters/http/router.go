// Package http содержит компоненты HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"

	"credkeeper/internal/auth/adapters/http/handlers"
	"credkeeper/internal/auth/adapters/http/middleware"
	"credkeeper/internal/auth/i18n"
	"credkeeper/internal/auth/ports/api"
)

// Dependencies содержит зависимости маршрутизатора.
type Dependencies struct {
	Auth   api.AuthUseCase
	Reset  api.ResetUseCase
	User   api.UserUseCase
	Gate   api.Gate
	Health handlers.HealthChecker
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies, corsOrigin string) {
	handler := handlers.NewHandler(deps.Auth, deps.Reset, deps.User, deps.Health)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLocaleMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowHeaders:     []string{fiber.HeaderContentType, fiber.HeaderAuthorization, fiber.HeaderAcceptLanguage, middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	}))

	// Публичные маршруты.
	app.Post("/signup", handler.Signup)
	app.Post("/login", handler.Login)
	app.Post("/forgot-password", handler.ForgotPassword)
	app.Post("/reset-password", handler.ResetPassword)
	app.Get("/healthz", handler.Health)

	// Защищенные маршруты.
	homeRoutes := app.Group("/user-home")
	homeRoutes.Use(middleware.NewAuthMiddleware(deps.Gate))
	homeRoutes.Get("/", handler.Home)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return middleware.Message(c, fiber.StatusNotFound, i18n.RouteNotFound)
	})
}
