// Package redis хранит пользователей в Redis: один hash на пользователя, ключ по email.
package redis

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/repositories"
	"credkeeper/pkg/logger"
)

const (
	fieldID               = "id"
	fieldEmail            = "email"
	fieldPasswordHash     = "password_hash"
	fieldResetToken       = "reset_token"
	fieldResetTokenExpiry = "reset_token_expiry"
	fieldCreatedAt        = "created_at"
	fieldUpdatedAt        = "updated_at"

	// DefaultKeyPrefix - префикс ключей по умолчанию.
	DefaultKeyPrefix = "credkeeper"

	maxWatchRetries = 3
)

// ErrCorruptedRecord возвращается, если hash пользователя нельзя разобрать.
var ErrCorruptedRecord = errors.New("corrupted user record")

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// UserRepository реализует repositories.UserRepository поверх Redis.
type UserRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewUserRepository создает репозиторий пользователей в Redis.
func NewUserRepository(client redis.UniversalClient, prefix string) repositories.UserRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &UserRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *UserRepository) key(email string) string {
	return r.prefix + ":user:" + email
}

// Create сохраняет нового пользователя, если email еще свободен.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "redis_user"), zap.String("method", "Create"))

	now := r.now().UTC()
	created := &entities.User{
		ID:           uuid.NewString(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	key := r.key(user.Email)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return services.ErrEmailAlreadyExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, toHash(created))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, services.ErrEmailAlreadyExists), errors.Is(err, redis.TxFailedErr):
		log.Debug(ctx, "email already taken", zap.String("email", user.Email))
		return nil, fmt.Errorf("error creating user: %w", services.ErrEmailAlreadyExists)
	default:
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "redis_user"), zap.String("method", "FindByEmail"))

	user, err := r.load(ctx, r.client, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, err
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}
	return user, nil
}

// FindByEmailAndResetToken находит пользователя по паре email и токен сброса.
func (r *UserRepository) FindByEmailAndResetToken(ctx context.Context, email, resetToken string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "redis_user"), zap.String("method", "FindByEmailAndResetToken"))

	user, err := r.load(ctx, r.client, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, err
		}
		log.Error(ctx, "error finding user by reset token", zap.Error(err))
		return nil, fmt.Errorf("error querying user by reset token: %w", err)
	}

	if resetToken == "" || subtle.ConstantTimeCompare([]byte(user.ResetToken), []byte(resetToken)) != 1 {
		log.Debug(ctx, "no user with this reset token", zap.String("email", email))
		return nil, entities.ErrUserNotFound
	}
	return user, nil
}

// Update перезаписывает хэш пароля и состояние сброса в одной транзакции MULTI/EXEC.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "redis_user"), zap.String("method", "Update"))

	key := r.key(user.Email)
	var updated *entities.User

	txf := func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, user.Email)
		if err != nil {
			return err
		}
		if current.ID != user.ID {
			return entities.ErrUserNotFound
		}

		next := *user
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = r.now().UTC()

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, toHash(&next))
			if !next.HasPendingReset() {
				pipe.HDel(ctx, key, fieldResetToken, fieldResetTokenExpiry)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = &next
		return nil
	}

	var err error
	for range maxWatchRetries {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, "user not found for update", zap.String("id", user.ID))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return updated, nil
}

// SetResetToken записывает только поля сброса, пароль в hash не перезаписывается.
func (r *UserRepository) SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("repository", "redis_user"), zap.String("method", "SetResetToken"))

	key := r.key(email)
	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return entities.ErrUserNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				fieldResetToken, resetToken,
				fieldResetTokenExpiry, expiresAt.UTC().Format(time.RFC3339Nano),
				fieldUpdatedAt, r.now().UTC().Format(time.RFC3339Nano),
			)
			return nil
		})
		return err
	}

	var err error
	for range maxWatchRetries {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, "user not found for reset token", zap.String("email", email))
			return entities.ErrUserNotFound
		}
		log.Error(ctx, "error storing reset token", zap.Error(err))
		return fmt.Errorf("error storing reset token: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		logger.Log(ctx).Error(ctx, "redis ping failed", zap.Error(err))
		return fmt.Errorf("error pinging redis: %w", err)
	}
	return nil
}

func (r *UserRepository) load(ctx context.Context, c hashReader, email string) (*entities.User, error) {
	values, err := c.HGetAll(ctx, r.key(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, entities.ErrUserNotFound
	}
	return fromHash(values)
}

func toHash(user *entities.User) map[string]interface{} {
	values := map[string]interface{}{
		fieldID:           user.ID,
		fieldEmail:        user.Email,
		fieldPasswordHash: user.PasswordHash,
		fieldCreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:    user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if user.HasPendingReset() {
		values[fieldResetToken] = user.ResetToken
		values[fieldResetTokenExpiry] = user.ResetTokenExpiry.UTC().Format(time.RFC3339Nano)
	}
	return values
}

func fromHash(values map[string]string) (*entities.User, error) {
	user := &entities.User{
		ID:           values[fieldID],
		Email:        values[fieldEmail],
		PasswordHash: values[fieldPasswordHash],
	}
	if user.ID == "" || user.Email == "" {
		return nil, ErrCorruptedRecord
	}

	var err error
	if user.CreatedAt, err = time.Parse(time.RFC3339Nano, values[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptedRecord, fieldCreatedAt, err)
	}
	if user.UpdatedAt, err = time.Parse(time.RFC3339Nano, values[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptedRecord, fieldUpdatedAt, err)
	}

	token, expiry := values[fieldResetToken], values[fieldResetTokenExpiry]
	if token != "" && expiry != "" {
		expiresAt, err := time.Parse(time.RFC3339Nano, expiry)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptedRecord, fieldResetTokenExpiry, err)
		}
		user.SetResetToken(token, expiresAt)
	}

	return user, nil
}
