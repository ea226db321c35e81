// Package handlers содержит HTTP обработчики сервиса учетных данных.
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"credkeeper/internal/auth/adapters/http/dto"
	"credkeeper/internal/auth/adapters/http/middleware"
	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/i18n"
	"credkeeper/internal/auth/ports/api"
	"credkeeper/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerSignup         = "auth handler: signup"
	LogHandlerLogin          = "auth handler: login"
	LogHandlerForgotPassword = "auth handler: forgot password"
	LogHandlerResetPassword  = "auth handler: reset password" // #nosec G101 - not a credential
	LogHandlerHome           = "auth handler: user home"
	LogHandlerHealth         = "auth handler: health"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorHealthCheck          = "health check failed"
)

// HealthChecker проверяет доступность хранилища.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler содержит HTTP обработчики учетных данных.
type Handler struct {
	authUseCase  api.AuthUseCase
	resetUseCase api.ResetUseCase
	userUseCase  api.UserUseCase
	health       HealthChecker
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(
	authUseCase api.AuthUseCase,
	resetUseCase api.ResetUseCase,
	userUseCase api.UserUseCase,
	health HealthChecker,
) *Handler {
	return &Handler{
		authUseCase:  authUseCase,
		resetUseCase: resetUseCase,
		userUseCase:  userUseCase,
		health:       health,
	}
}

// failure логирует ошибку use case и отправляет соответствующий ответ.
func failure(ctx fiber.Ctx, log *logger.Logger, err error, overrides map[error]i18n.Key, fallback i18n.Key) error {
	requestCtx := middleware.RequestContext(ctx)
	status, key := classify(err, overrides, fallback)
	if status == fiber.StatusInternalServerError {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
	} else {
		log.Debug(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
	}
	return sendErrorResponse(ctx, status, key)
}

// Signup обрабатывает регистрацию нового пользователя.
func (h *Handler) Signup(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "signup"))
	log.Info(requestCtx, LogHandlerSignup)

	var req dto.SignupRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusBadRequest, i18n.MissingFields)
	}

	if _, err := h.authUseCase.Signup(requestCtx, req.Email, req.Password); err != nil {
		return failure(ctx, log, err, nil, i18n.ServerError)
	}

	return sendJSON(ctx, fiber.StatusCreated, dto.MessageResponse{
		Message: i18n.T(middleware.Language(ctx), i18n.SignupSuccess),
	})
}

// Login обрабатывает вход пользователя и выдает токен сессии.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "login"))
	log.Info(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusBadRequest, i18n.MissingFields)
	}

	session, err := h.authUseCase.Login(requestCtx, req.Email, req.Password)
	if err != nil {
		return failure(ctx, log, err, nil, i18n.ServerError)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.LoginResponse{
		Message: i18n.T(middleware.Language(ctx), i18n.LoginSuccess),
		Token:   session.Token,
	})
}

// forgotPasswordOverrides заменяет сообщение о несуществующем пользователе для /forgot-password.
var forgotPasswordOverrides = map[error]i18n.Key{
	entities.ErrUserNotFound: i18n.EmailNotFound,
}

// ForgotPassword выпускает токен сброса и отправляет письмо со ссылкой.
func (h *Handler) ForgotPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "forgot_password"))
	log.Info(requestCtx, LogHandlerForgotPassword)

	var req dto.ForgotPasswordRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusBadRequest, i18n.MissingFields)
	}

	lang := middleware.Language(ctx)
	if err := h.resetUseCase.ForgotPassword(requestCtx, req.Email, lang); err != nil {
		return failure(ctx, log, err, forgotPasswordOverrides, i18n.ErrorSending)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.MessageResponse{
		Message: i18n.T(lang, i18n.ResetEmailSent),
	})
}

// ResetPassword устанавливает новый пароль по действующему токену сброса.
func (h *Handler) ResetPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "reset_password"))
	log.Info(requestCtx, LogHandlerResetPassword)

	var req dto.ResetPasswordRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusBadRequest, i18n.MissingFields)
	}

	if err := h.resetUseCase.ResetPassword(requestCtx, req.Email, req.Token, req.NewPassword); err != nil {
		return failure(ctx, log, err, nil, i18n.ServerError)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.MessageResponse{
		Message: i18n.T(middleware.Language(ctx), i18n.ResetSuccess),
	})
}

// Home возвращает приветствие аутентифицированному пользователю.
func (h *Handler) Home(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "user_home"))
	log.Info(requestCtx, LogHandlerHome)

	identity, _ := middleware.Identity(ctx)
	payload, err := h.userUseCase.Home(requestCtx, identity)
	if err != nil {
		return failure(ctx, log, err, nil, i18n.ServerError)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.HomeResponse{
		Message: i18n.T(middleware.Language(ctx), i18n.Welcome) + ", " + payload.Email,
		Email:   payload.Email,
	})
}

// Health проверяет доступность хранилища.
func (h *Handler) Health(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerHealth)

	if err := h.health.Ping(requestCtx); err != nil {
		log.Error(requestCtx, ErrorHealthCheck, zap.Error(err))
		return sendErrorResponse(ctx, fiber.StatusInternalServerError, i18n.ServerError)
	}

	return sendJSON(ctx, fiber.StatusOK, dto.MessageResponse{
		Message: i18n.T(middleware.Language(ctx), i18n.OK),
	})
}
