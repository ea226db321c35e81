package config

import "time"

// ResetConfig содержит настройки сброса пароля.
type ResetConfig struct {
	TokenTTL    string `yaml:"token_ttl" env:"AUTH_RESET_TOKEN_TTL" env-default:"10m"`
	LinkBaseURL string `yaml:"link_base_url" env:"AUTH_RESET_LINK_BASE_URL" env-default:"http://localhost:3000/reset-password"`
}

// GetTokenTTL возвращает срок действия токена сброса.
func (c *ResetConfig) GetTokenTTL() time.Duration {
	return parseDuration(c.TokenTTL, 10*time.Minute)
}
