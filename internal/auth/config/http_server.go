package config

import (
	"fmt"
	"time"
)

// HTTPConfig конфигурация HTTP сервера.
type HTTPConfig struct {
	Host         string `yaml:"host" env:"AUTH_HTTP_HOST" env-default:"0.0.0.0"`
	Port         int    `yaml:"port" env:"AUTH_HTTP_PORT" env-default:"5000"`
	CORSOrigin   string `yaml:"cors_origin" env:"AUTH_HTTP_CORS_ORIGIN" env-default:"http://localhost:3000"`
	ReadTimeout  string `yaml:"read_timeout" env:"AUTH_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout string `yaml:"write_timeout" env:"AUTH_HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

// GetAddress возвращает адрес для HTTP сервера.
func (h *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// GetReadTimeout возвращает таймаут чтения запроса.
func (h *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(h.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout возвращает таймаут записи ответа.
func (h *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(h.WriteTimeout, 10*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
