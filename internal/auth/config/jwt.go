package config

import "time"

// JWTConfig содержит настройки токенов сессии и хэширования паролей.
type JWTConfig struct {
	SecretKey         string `yaml:"secret_key" env:"AUTH_JWT_SECRET_KEY" env-default:"super-secret-key-change-me-in-production"`
	TokenTTL          string `yaml:"token_ttl" env:"AUTH_JWT_TOKEN_TTL" env-default:"1h"`
	BCryptCost        int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"10"`
	BCryptConcurrency int    `yaml:"bcrypt_max_concurrency" env:"AUTH_BCRYPT_MAX_CONCURRENCY" env-default:"0"`
}

// GetTokenTTL возвращает время жизни токена сессии.
func (c *JWTConfig) GetTokenTTL() time.Duration {
	return parseDuration(c.TokenTTL, time.Hour)
}
