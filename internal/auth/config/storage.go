package config

import (
	"fmt"
	"time"

	"credkeeper/pkg/db/redis"
)

// Поддерживаемые хранилища пользователей.
const (
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// StorageConfig выбирает хранилище пользователей.
type StorageConfig struct {
	Driver        string `yaml:"driver" env:"AUTH_STORAGE_DRIVER" env-default:"postgres"`
	MigrationsDir string `yaml:"migrations_dir" env:"AUTH_MIGRATIONS_DIR" env-default:"./migrations/auth"`
}

// RedisConfig содержит настройки подключения к Redis.
type RedisConfig struct {
	Host      string `yaml:"host" env:"AUTH_REDIS_HOST" env-default:"localhost"`
	Port      int    `yaml:"port" env:"AUTH_REDIS_PORT" env-default:"6379"`
	Password  string `yaml:"password" env:"AUTH_REDIS_PASSWORD" env-default:""`
	DB        int    `yaml:"db" env:"AUTH_REDIS_DB" env-default:"0"`
	PoolSize  int    `yaml:"pool_size" env:"AUTH_REDIS_POOL_SIZE" env-default:"10"`
	Timeout   string `yaml:"timeout" env:"AUTH_REDIS_TIMEOUT" env-default:"5s"`
	KeyPrefix string `yaml:"key_prefix" env:"AUTH_REDIS_KEY_PREFIX" env-default:"credkeeper"`
}

// GetAddress возвращает адрес Redis в формате host:port.
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ClientConfig преобразует настройки в конфигурацию клиента Redis.
func (r *RedisConfig) ClientConfig() *redis.Config {
	return &redis.Config{
		Host:     r.Host,
		Port:     r.Port,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
		Timeout:  parseDuration(r.Timeout, 5*time.Second),
	}
}
