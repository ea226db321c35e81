package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/api"
	"credkeeper/internal/auth/ports/repositories"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

const (
	methodSignup = "Signup"
	methodLogin  = "Login"

	msgStartSignup          = "starting user signup"
	msgMissingCredentials   = "email or password missing"
	msgEmailExists          = "user with this email already exists"
	msgUserSignedUp         = "user signed up successfully"
	msgLoginAttempt         = "login attempt"
	msgLoginNonExistent     = "login attempt with non-existent email"
	msgIncorrectPassword    = "incorrect password provided"
	msgUserLoggedIn         = "user logged in successfully"
	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrFindingUser       = "error finding user by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrIssueToken        = "failed to issue session token"

	errCtxValidatingInput    = "validating input"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxIssuingToken       = "issuing session token"
)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
	}
}

// Signup регистрирует нового пользователя. Пароль сохраняется только в виде хэша.
func (a *AuthUseCaseImpl) Signup(ctx context.Context, email, password string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodSignup), zap.String("email", email))
	log.Debug(ctx, msgStartSignup)

	if email == "" || password == "" {
		log.Debug(ctx, msgMissingCredentials)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, services.ErrMissingFields)
	}

	existingUser, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, &entities.User{
		Email:        email,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			log.Debug(ctx, msgEmailExists)
			return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, err)
		}
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserSignedUp, zap.String("userID", createdUser.ID))
	return createdUser, nil
}

// Login проверяет учетные данные и выпускает токен сессии.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	if email == "" || password == "" {
		log.Debug(ctx, msgMissingCredentials)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, services.ErrMissingFields)
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxFindingUser, entities.ErrUserNotFound)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgIncorrectPassword, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrIncorrectPassword)
	}

	token, expiresAt, err := a.tokenSvc.Issue(ctx, user.Email)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxIssuingToken, err)
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID))
	return &services.Session{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
