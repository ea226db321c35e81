package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"credkeeper/internal/auth/adapters/memory"
	authredis "credkeeper/internal/auth/adapters/redis"
	"credkeeper/internal/auth/config"
	"credkeeper/internal/auth/db"
	"credkeeper/internal/auth/ports/repositories"
	"credkeeper/pkg/db/redis"
	"credkeeper/pkg/logger"
	"credkeeper/pkg/shutdown"
)

// Константы для сообщений хранилища.
const (
	LogClosingDB    = "closing database connections"
	LogClosingRedis = "closing Redis connection"
	LogStorage      = "initializing storage"

	ErrUnknownDriver = "unknown storage driver"
)

// openStorage подключает хранилище пользователей, выбранное в конфигурации.
// Возвращаемый hook закрывает соединения при завершении работы.
func openStorage(ctx context.Context, cfg *config.Config) (repositories.UserRepository, shutdown.Hook, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogStorage, zap.String("driver", cfg.Storage.Driver))

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		database, err := db.New(ctx, &cfg.Postgres, cfg.Storage.MigrationsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres storage: %w", err)
		}
		return database.Repositories().UserRepository(), func(ctx context.Context) error {
			log.Info(ctx, LogClosingDB)
			database.Close(ctx)
			return nil
		}, nil

	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}
		return authredis.NewUserRepository(client.RawClient(), cfg.Redis.KeyPrefix), func(ctx context.Context) error {
			log.Info(ctx, LogClosingRedis)
			return client.Close(ctx)
		}, nil

	case config.StorageMemory:
		return memory.NewUserRepository(), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("%s: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
}
