// Package postgres открывает пул соединений pgx и применяет миграции golang-migrate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"credkeeper/pkg/logger"
)

// Константы для сообщений logger.
const (
	LogConnecting        = "connecting to Postgres database"
	LogConnected         = "successfully connected to Postgres"
	LogClosing           = "closing Postgres connection pool"
	LogMigrationsApplied = "database migrations successfully applied"
)

// Константы для сообщений об ошибках.
const (
	ErrParseConfig  = "failed to parse connection config"
	ErrCreatePool   = "failed to create connection pool"
	ErrPingDatabase = "failed to ping database"
)

// DefaultPingTimeout ограничивает проверку соединения при старте.
const DefaultPingTimeout = 5 * time.Second

// ErrInvalidPoolSize возвращается при недопустимых размерах пула.
var ErrInvalidPoolSize = errors.New("invalid connection pool size")

// Config содержит параметры пула соединений.
type Config struct {
	DSN         string
	MinConns    int
	MaxConns    int
	PingTimeout time.Duration
}

// Validate проверяет, что размеры пула помещаются в int32 и MinConns не больше MaxConns.
// MaxConns, равный нулю, оставляет значение pgxpool по умолчанию.
func (c Config) Validate() error {
	switch {
	case c.MinConns < 0 || c.MaxConns < 0:
		return fmt.Errorf("%w: negative size (min=%d, max=%d)", ErrInvalidPoolSize, c.MinConns, c.MaxConns)
	case c.MinConns > math.MaxInt32 || c.MaxConns > math.MaxInt32:
		return fmt.Errorf("%w: size exceeds %d", ErrInvalidPoolSize, math.MaxInt32)
	case c.MaxConns > 0 && c.MinConns > c.MaxConns:
		return fmt.Errorf("%w: min %d greater than max %d", ErrInvalidPoolSize, c.MinConns, c.MaxConns)
	}
	return nil
}

// Database представляет пул соединений с Postgres.
type Database struct {
	pool *pgxpool.Pool
}

// New создает пул соединений и проверяет его доступность.
func New(ctx context.Context, cfg Config) (*Database, error) {
	log := logger.Log(ctx).With(zap.Int("min_conns", cfg.MinConns), zap.Int("max_conns", cfg.MaxConns))

	log.Info(ctx, LogConnecting)

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}

	poolCfg.MinConns = int32(cfg.MinConns) // #nosec G115 - checked by Validate
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns) // #nosec G115 - checked by Validate
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error(ctx, ErrCreatePool, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreatePool, err)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = DefaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error(ctx, ErrPingDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingDatabase, err)
	}

	log.Info(ctx, LogConnected)
	return &Database{pool: pool}, nil
}

// Pool возвращает пул соединений.
func (db *Database) Pool() *pgxpool.Pool {
	return db.pool
}

// Close закрывает пул.
func (db *Database) Close(ctx context.Context) {
	logger.Log(ctx).Info(ctx, LogClosing)
	db.pool.Close()
}

// Ping проверяет доступность базы данных.
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}
