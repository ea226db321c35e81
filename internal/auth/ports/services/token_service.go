package services

import (
	"context"
	"time"

	"credkeeper/internal/auth/domain/services"
)

// TokenService определяет интерфейс для операций с токенами сессии.
type TokenService interface {
	Issue(ctx context.Context, email string) (string, time.Time, error)

	Verify(ctx context.Context, token string) (*services.JWTClaims, error)
}
