package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodIssue        = "Issue"
	methodVerify       = "Verify"
	msgIssuingToken    = "issuing session token"
	msgVerifyingToken  = "verifying session token"
	msgTokenIssued     = "session token issued"
	msgTokenVerified   = "session token verified"
	msgInvalidToken    = "invalid token"
	msgTokenExpired    = "token has expired"
	msgEmptySecretKey  = "empty secret key provided"
	msgEmptyEmailClaim = "email claim is empty"
	//nolint:gosec
	errSigningToken    = "error signing token"
	errCtxIssuingToken = "issuing token"
	errCtxParsingToken = "parsing token"
	errCtxVerifyToken  = "verifying token"

	errDetailEmptySecret = "empty secret key"
	errDetailEmptyEmail  = "empty email"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService.
type ServiceJWT struct {
	config services.JWTConfig
	now    func() time.Time
}

// JWTOption настраивает ServiceJWT.
type JWTOption func(*ServiceJWT)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) JWTOption {
	return func(s *ServiceJWT) {
		s.now = now
	}
}

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string, tokenTTL time.Duration, opts ...JWTOption) svc.TokenService {
	s := &ServiceJWT{
		config: services.JWTConfig{
			SecretKey: []byte(secretKey),
			TokenTTL:  tokenTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func domainToJWTClaims(claims services.JWTClaims) Claims {
	return Claims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			Subject:   claims.Email,
		},
	}
}

func jwtToDomainClaims(claims *Claims) *services.JWTClaims {
	var expiresAt, issuedAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &services.JWTClaims{
		Email:     claims.Email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
}

// Issue выпускает подписанный токен сессии для email.
func (s *ServiceJWT) Issue(ctx context.Context, email string) (string, time.Time, error) {
	log := logger.Log(ctx).With(zap.String("method", methodIssue), zap.String("email", email))
	log.Debug(ctx, msgIssuingToken)

	if len(s.config.SecretKey) == 0 {
		log.Error(ctx, msgEmptySecretKey)
		return "", time.Time{}, fmt.Errorf("%s: %w: %s", errCtxIssuingToken, services.ErrGeneratingJWTToken, errDetailEmptySecret)
	}

	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	jwtClaims := domainToJWTClaims(services.JWTClaims{
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)

	tokenString, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenIssued, zap.Time("expiresAt", expiresAt))
	return tokenString, expiresAt, nil
}

// Verify проверяет подпись и срок действия токена и возвращает его claims.
func (s *ServiceJWT) Verify(ctx context.Context, tokenString string) (*services.JWTClaims, error) {
	log := logger.Log(ctx).With(zap.String("method", methodVerify))
	log.Debug(ctx, msgVerifyingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.config.SecretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug(ctx, msgTokenExpired)
			return nil, fmt.Errorf("%s: %w", errCtxVerifyToken, services.ErrExpiredJWTToken)
		}
		log.Debug(ctx, msgInvalidToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return nil, fmt.Errorf("%s: %w", errCtxVerifyToken, services.ErrInvalidJWTToken)
	}

	if claims.Email == "" {
		log.Debug(ctx, msgEmptyEmailClaim)
		return nil, fmt.Errorf("%s: %w: %s", errCtxVerifyToken, services.ErrInvalidJWTToken, errDetailEmptyEmail)
	}

	log.Debug(ctx, msgTokenVerified, zap.String("email", claims.Email))
	return jwtToDomainClaims(claims), nil
}
