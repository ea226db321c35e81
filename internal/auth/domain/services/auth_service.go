package services

import (
	"errors"
	"time"
)

// Ошибки домена аутентификации.
var (
	ErrMissingFields      = errors.New("required fields are missing")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrAccessDenied       = errors.New("access denied: no token provided")
	ErrForbidden          = errors.New("forbidden: invalid or expired token")
)

// Session представляет результат успешного входа.
type Session struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Identity - аутентифицированная личность, извлеченная из токена сессии.
type Identity struct {
	Email string
}

// HomePayload - данные домашней страницы пользователя.
type HomePayload struct {
	Email string
}
