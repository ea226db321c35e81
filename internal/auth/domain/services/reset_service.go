package services

import (
	"errors"
	"time"
)

// Ошибки сброса пароля.
var (
	ErrInvalidOrExpiredResetToken = errors.New("invalid or expired reset token")
	ErrResetTokenGeneration       = errors.New("failed to generate reset token")
	ErrMailDelivery               = errors.New("failed to deliver reset email")
)

// ResetTokenBytes - количество случайных байт в токене сброса.
const ResetTokenBytes = 32

// ResetRequest - выданный токен сброса пароля.
type ResetRequest struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// ResetMail - письмо со ссылкой для сброса пароля.
type ResetMail struct {
	To      string
	Subject string
	HTML    string
	Link    string
}
