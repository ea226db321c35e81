package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"credkeeper/internal/auth/domain/services"
	svc "credkeeper/internal/auth/ports/services"
)

// ServiceResetToken генерирует токены сброса пароля из криптографически стойкого источника.
type ServiceResetToken struct {
	random io.Reader
}

// NewResetToken создает генератор токенов, читающий из crypto/rand.
func NewResetToken() svc.ResetTokenService {
	return &ServiceResetToken{random: rand.Reader}
}

// NewResetTokenFromReader создает генератор с заданным источником случайности.
func NewResetTokenFromReader(r io.Reader) svc.ResetTokenService {
	return &ServiceResetToken{random: r}
}

// Generate возвращает 32 случайных байта в виде hex-строки длиной 64 символа.
func (s *ServiceResetToken) Generate() (string, error) {
	buf := make([]byte, services.ResetTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("%w: %w", services.ErrResetTokenGeneration, err)
	}
	return hex.EncodeToString(buf), nil
}
