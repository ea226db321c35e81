// Package db поднимает базу данных сервиса учетных записей: миграции и пул соединений.
package db

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	authpg "credkeeper/internal/auth/adapters/postgres"
	"credkeeper/internal/auth/config"
	"credkeeper/pkg/db/postgres"
	"credkeeper/pkg/logger"
)

// Константы для сообщений логгера.
const (
	LogDBInitializing    = "initializing credential database"
	LogDBInitialized     = "credential database initialized successfully"
	LogMigrationStarting = "starting database migrations for credential service"
	LogSchemaVersion     = "credential schema version"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations = "failed to apply credential database migrations"
	ErrDBConnection = "failed to connect to credential database"
	ErrGetPath      = "failed to get path"
)

// DB представляет соединение с базой данных сервиса учетных записей.
type DB struct {
	database *postgres.Database
	repos    *authpg.RepositoryFactory
}

// New применяет миграции и открывает пул соединений.
func New(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("ssl_mode", cfg.SSLMode),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	migrationsURL, err := sourceURL(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", ErrDBMigrations, ErrGetPath, err)
	}

	log.Info(ctx, LogMigrationStarting, zap.String("migrations_path", migrationsURL))
	state, err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}
	log.Info(ctx, LogSchemaVersion, zap.Uint("version", state.Version), zap.Bool("changed", state.Changed))

	database, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.GetDSN(),
		MinConns: cfg.MinConn,
		MaxConns: cfg.MaxConn,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{
		database: database,
		repos:    authpg.NewRepositoryFactory(database.Pool()),
	}, nil
}

func sourceURL(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return "file://" + dir, nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return "file://" + absPath, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	return db.database.Ping(ctx)
}

// Repositories возвращает репозитории поверх пула соединений.
func (db *DB) Repositories() *authpg.RepositoryFactory {
	return db.repos
}
