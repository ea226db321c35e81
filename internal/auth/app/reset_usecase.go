package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/api"
	"credkeeper/internal/auth/ports/repositories"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

const (
	methodRequestReset   = "RequestReset"
	methodValidate       = "Validate"
	methodConsume        = "Consume"
	methodForgotPassword = "ForgotPassword"
	methodResetPassword  = "ResetPassword"

	// DefaultResetTokenTTL - срок действия токена сброса по умолчанию.
	DefaultResetTokenTTL = 10 * time.Minute
	// DefaultResetLinkBase - адрес страницы сброса пароля по умолчанию.
	DefaultResetLinkBase = "http://localhost:3000/reset-password"

	msgRequestingReset     = "requesting password reset"
	msgResetUnknownEmail   = "password reset requested for unknown email"
	msgResetIssued         = "reset token issued"
	msgValidatingReset     = "validating reset token"
	msgResetPairNotFound   = "no user with this email and reset token"
	msgResetTokenExpired   = "reset token has expired"
	msgResetValid          = "reset token is valid"
	msgConsumingReset      = "consuming reset token"
	msgResetConsumed       = "reset token consumed"
	msgSendingResetMail    = "sending password reset mail"
	msgResetMailSent       = "password reset mail sent"
	msgResettingPassword   = "resetting password"
	msgMissingNewPassword  = "new password is missing"
	msgPasswordReset       = "password reset successfully"
	msgErrGenerateReset    = "failed to generate reset token"
	msgErrStoreReset       = "failed to store reset token"
	msgErrLookupReset      = "failed to look up reset token"
	msgErrClearReset       = "failed to clear reset token"
	msgErrBuildMail        = "failed to build reset mail"
	msgErrSendMail         = "failed to send reset mail"
	msgErrStoreNewPassword = "failed to store new password"

	errCtxRequestingReset = "requesting reset"
	errCtxGeneratingReset = "generating reset token"
	errCtxStoringReset    = "storing reset token"
	errCtxValidatingReset = "validating reset token"
	errCtxConsumingReset  = "consuming reset token"
	errCtxBuildingMail    = "building reset mail"
	errCtxSendingMail     = "sending reset mail"
	errCtxResettingPass   = "resetting password"
	errCtxStoringNewPass  = "storing new password"
	errCtxNilUser         = "nil user"
)

// ResetSettings содержит параметры жизненного цикла токенов сброса.
type ResetSettings struct {
	TokenTTL    time.Duration
	LinkBaseURL string
}

// ResetOption настраивает ResetUseCaseImpl.
type ResetOption func(*ResetUseCaseImpl)

// WithResetClock подменяет источник текущего времени.
func WithResetClock(now func() time.Time) ResetOption {
	return func(r *ResetUseCaseImpl) {
		r.now = now
	}
}

// ResetUseCaseImpl реализует интерфейс ResetUseCase.
type ResetUseCaseImpl struct {
	userRepo      repositories.UserRepository
	passwordSvc   svc.PasswordService
	resetTokenSvc svc.ResetTokenService
	mailSender    svc.MailSender
	settings      ResetSettings
	now           func() time.Time
}

// NewResetUseCase создает новый экземпляр сервиса сброса пароля.
func NewResetUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	resetTokenSvc svc.ResetTokenService,
	mailSender svc.MailSender,
	settings ResetSettings,
	opts ...ResetOption,
) api.ResetUseCase {
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = DefaultResetTokenTTL
	}
	if settings.LinkBaseURL == "" {
		settings.LinkBaseURL = DefaultResetLinkBase
	}

	r := &ResetUseCaseImpl{
		userRepo:      userRepo,
		passwordSvc:   passwordSvc,
		resetTokenSvc: resetTokenSvc,
		mailSender:    mailSender,
		settings:      settings,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestReset выдает новый токен сброса и сохраняет его вместе со сроком действия.
// Повторный запрос заменяет предыдущий токен.
func (r *ResetUseCaseImpl) RequestReset(ctx context.Context, email string) (*services.ResetRequest, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRequestReset), zap.String("email", email))
	log.Debug(ctx, msgRequestingReset)

	if email == "" {
		log.Debug(ctx, msgResetUnknownEmail)
		return nil, fmt.Errorf("%s: %w", errCtxRequestingReset, entities.ErrUserNotFound)
	}

	user, err := r.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetUnknownEmail)
		} else {
			log.Error(ctx, msgErrFindingUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxRequestingReset, err)
	}

	token, err := r.resetTokenSvc.Generate()
	if err != nil {
		log.Error(ctx, msgErrGenerateReset, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxGeneratingReset, err)
	}

	expiresAt := r.now().Add(r.settings.TokenTTL)

	if err := r.userRepo.SetResetToken(ctx, user.Email, token, expiresAt); err != nil {
		log.Error(ctx, msgErrStoreReset, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxStoringReset, err)
	}

	log.Info(ctx, msgResetIssued, zap.String("userID", user.ID), zap.Time("expiresAt", expiresAt))
	return &services.ResetRequest{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate возвращает пользователя, если пара email и токен существует и срок не истек.
// Причина отказа наружу не раскрывается.
func (r *ResetUseCaseImpl) Validate(ctx context.Context, email, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidate), zap.String("email", email))
	log.Debug(ctx, msgValidatingReset)

	if email == "" || token == "" {
		log.Debug(ctx, msgResetPairNotFound)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingReset, services.ErrInvalidOrExpiredResetToken)
	}

	user, err := r.userRepo.FindByEmailAndResetToken(ctx, email, token)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetPairNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingReset, services.ErrInvalidOrExpiredResetToken)
		}
		log.Error(ctx, msgErrLookupReset, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingReset, err)
	}

	if !user.ResetTokenActive(token, r.now()) {
		log.Debug(ctx, msgResetTokenExpired, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingReset, services.ErrInvalidOrExpiredResetToken)
	}

	log.Debug(ctx, msgResetValid, zap.String("userID", user.ID))
	return user, nil
}

// Consume очищает токен сброса и срок его действия.
func (r *ResetUseCaseImpl) Consume(ctx context.Context, user *entities.User) error {
	log := logger.Log(ctx).With(zap.String("method", methodConsume))
	log.Debug(ctx, msgConsumingReset)

	if user == nil {
		return fmt.Errorf("%s: %w", errCtxNilUser, entities.ErrUserNotFound)
	}

	user.ClearResetToken()
	if _, err := r.userRepo.Update(ctx, user); err != nil {
		log.Error(ctx, msgErrClearReset, zap.Error(err), zap.String("userID", user.ID))
		return fmt.Errorf("%s: %w", errCtxConsumingReset, err)
	}

	log.Debug(ctx, msgResetConsumed, zap.String("userID", user.ID))
	return nil
}

// ForgotPassword выдает токен сброса и отправляет письмо со ссылкой на языке lang.
// Ошибка доставки не откатывает сохраненный токен.
func (r *ResetUseCaseImpl) ForgotPassword(ctx context.Context, email, lang string) error {
	log := logger.Log(ctx).With(zap.String("method", methodForgotPassword), zap.String("email", email))

	request, err := r.RequestReset(ctx, email)
	if err != nil {
		return err
	}

	link, err := buildResetLink(r.settings.LinkBaseURL, request.Email, request.Token)
	if err != nil {
		log.Error(ctx, msgErrBuildMail, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxBuildingMail, err)
	}

	mail, err := composeResetMail(lang, request.Email, link)
	if err != nil {
		log.Error(ctx, msgErrBuildMail, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxBuildingMail, err)
	}

	log.Debug(ctx, msgSendingResetMail)
	if err := r.mailSender.Send(ctx, mail); err != nil {
		log.Error(ctx, msgErrSendMail, zap.Error(err))
		return fmt.Errorf("%s: %w: %w", errCtxSendingMail, services.ErrMailDelivery, err)
	}

	log.Info(ctx, msgResetMailSent)
	return nil
}

// ResetPassword заменяет пароль по действующему токену сброса.
// Новый хэш и очистка токена сохраняются одним обновлением записи.
func (r *ResetUseCaseImpl) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodResetPassword), zap.String("email", email))
	log.Debug(ctx, msgResettingPassword)

	user, err := r.Validate(ctx, email, token)
	if err != nil {
		return err
	}

	if newPassword == "" {
		log.Debug(ctx, msgMissingNewPassword)
		return fmt.Errorf("%s: %w", errCtxResettingPass, services.ErrMissingFields)
	}

	hashedPassword, err := r.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	user.PasswordHash = hashedPassword
	user.ClearResetToken()

	if _, err := r.userRepo.Update(ctx, user); err != nil {
		log.Error(ctx, msgErrStoreNewPassword, zap.Error(err), zap.String("userID", user.ID))
		return fmt.Errorf("%s: %w", errCtxStoringNewPass, err)
	}

	log.Info(ctx, msgPasswordReset, zap.String("userID", user.ID))
	return nil
}
