package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/api"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

const (
	methodAuthenticate = "Authenticate"

	bearerPrefix = "Bearer "

	msgAuthenticating    = "authenticating request"
	msgNoToken           = "no token provided"
	msgTokenRejected     = "session token rejected"
	msgErrVerifyingToken = "unexpected error verifying session token"
	msgAuthenticated     = "request authenticated"

	errCtxReadingHeader  = "reading authorization header"
	errCtxVerifyingToken = "verifying session token"
)

// GateImpl проверяет заголовок Authorization с помощью TokenService.
type GateImpl struct {
	tokenSvc svc.TokenService
}

// NewGate создает новый экземпляр проверки доступа.
func NewGate(tokenSvc svc.TokenService) api.Gate {
	return &GateImpl{tokenSvc: tokenSvc}
}

// Authenticate извлекает личность из заголовка Authorization.
// Заголовок содержит сам токен, префикс "Bearer " допускается.
func (g *GateImpl) Authenticate(ctx context.Context, authorization string) (*services.Identity, error) {
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate))
	log.Debug(ctx, msgAuthenticating)

	token := strings.TrimLeft(authorization, " \t")
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}
	token = strings.TrimSpace(token)

	if token == "" {
		log.Debug(ctx, msgNoToken)
		return nil, fmt.Errorf("%s: %w", errCtxReadingHeader, services.ErrAccessDenied)
	}

	claims, err := g.tokenSvc.Verify(ctx, token)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidJWTToken) && !errors.Is(err, services.ErrExpiredJWTToken) {
			log.Warn(ctx, msgErrVerifyingToken, zap.Error(err))
		} else {
			log.Debug(ctx, msgTokenRejected, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingToken, services.ErrForbidden)
	}

	log.Debug(ctx, msgAuthenticated, zap.String("email", claims.Email))
	return &services.Identity{Email: claims.Email}, nil
}
