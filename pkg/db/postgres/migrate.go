package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"credkeeper/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
	ErrReadMigrationVersion    = "failed to read migration version"
)

// ErrDirtyMigration возвращается, если предыдущая миграция завершилась с ошибкой.
var ErrDirtyMigration = errors.New("database schema is dirty")

// MigrationState - версия схемы после применения миграций.
type MigrationState struct {
	Version uint
	Changed bool
}

// MigrateDSN применяет миграции из sourceURL к базе dsn.
// Отмена ctx останавливает миграции после текущего шага.
func MigrateDSN(ctx context.Context, dsn string, sourceURL string) (*MigrationState, error) {
	log := logger.Log(ctx).With(zap.String("source", sourceURL))

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	state := &MigrationState{Changed: true}
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Error(ctx, ErrApplyMigrations, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrApplyMigrations, err)
		}
		state.Changed = false
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		log.Error(ctx, ErrReadMigrationVersion, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrReadMigrationVersion, err)
	case dirty:
		return nil, fmt.Errorf("%s: %w (version %d)", ErrApplyMigrations, ErrDirtyMigration, version)
	default:
		state.Version = version
	}

	log.Info(ctx, LogMigrationsApplied, zap.Uint("version", state.Version), zap.Bool("changed", state.Changed))
	return state, nil
}
