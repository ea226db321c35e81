// Package services предоставляет фабрику для создания и доступа к сервисам аутентификации:
// хэширование паролей, токены сессии и токены сброса пароля.
package services

import (
	"time"

	"credkeeper/internal/auth/ports/services"
)

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService   services.PasswordService
	tokenService      services.TokenService
	resetTokenService services.ResetTokenService
}

// NewServiceFactory создает новую фабрику сервисов.
func NewServiceFactory(
	jwtSecretKey string,
	tokenTTL time.Duration,
	bcryptCost, bcryptConcurrency int,
) *ServiceFactory {
	return &ServiceFactory{
		passwordService:   NewBcrypt(bcryptCost, bcryptConcurrency),
		tokenService:      NewJWT(jwtSecretKey, tokenTTL),
		resetTokenService: NewResetToken(),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис для работы с токенами сессии.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokenService
}

// ResetTokenService возвращает генератор токенов сброса пароля.
func (f *ServiceFactory) ResetTokenService() services.ResetTokenService {
	return f.resetTokenService
}
