package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/entities"
	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/ports/repositories"
	"credkeeper/pkg/logger"
)

const (
	userColumns = `id, email, password_hash, reset_token, reset_token_expiry, created_at, updated_at`

	queryCreateUser = `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING ` + userColumns

	queryFindByEmail = `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `

	queryFindByEmailAndResetToken = `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1 AND reset_token = $2
    `

	queryUpdateUser = `
        UPDATE users
        SET email = $2, password_hash = $3, reset_token = $4, reset_token_expiry = $5, updated_at = $6
        WHERE id = $1
        RETURNING ` + userColumns

	querySetResetToken = `
        UPDATE users
        SET reset_token = $2, reset_token_expiry = $3, updated_at = $4
        WHERE email = $1
        RETURNING id
    `
)

// PgxPoolInterface - подмножество pgxpool.Pool, используемое репозиторием.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Ping(ctx context.Context) error
}

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmail"))

	user, err := scanUser(r.pool.QueryRow(ctx, queryFindByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("email", email))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by email", zap.Error(err))
		return nil, fmt.Errorf("error querying user by email: %w", err)
	}

	return user, nil
}

// FindByEmailAndResetToken находит пользователя по паре email и токен сброса.
// Срок действия токена не проверяется.
func (r *UserRepository) FindByEmailAndResetToken(ctx context.Context, email, resetToken string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "FindByEmailAndResetToken"))

	user, err := scanUser(r.pool.QueryRow(ctx, queryFindByEmailAndResetToken, email, resetToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "no user with this reset token", zap.String("email", email))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by reset token", zap.Error(err))
		return nil, fmt.Errorf("error querying user by reset token: %w", err)
	}

	return user, nil
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	createdUser, err := scanUser(r.pool.QueryRow(ctx, queryCreateUser, user.Email, user.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			log.Debug(ctx, "email already taken", zap.String("email", user.Email))
			return nil, fmt.Errorf("error creating user: %w", services.ErrEmailAlreadyExists)
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return createdUser, nil
}

// Update сохраняет email, хэш пароля и состояние сброса одним запросом.
func (r *UserRepository) Update(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Update"))

	now := time.Now().UTC()
	token, expiry := resetColumns(user)

	updatedUser, err := scanUser(r.pool.QueryRow(ctx, queryUpdateUser,
		user.ID,
		user.Email,
		user.PasswordHash,
		token,
		expiry,
		now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found for update", zap.String("id", user.ID))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return updatedUser, nil
}

// SetResetToken сохраняет токен сброса и срок действия, не затрагивая хэш пароля.
func (r *UserRepository) SetResetToken(ctx context.Context, email, resetToken string, expiresAt time.Time) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "SetResetToken"))

	var id string
	err := r.pool.QueryRow(ctx, querySetResetToken,
		email,
		pgtype.Text{String: resetToken, Valid: true},
		pgtype.Timestamptz{Time: expiresAt.UTC(), Valid: true},
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found for reset token", zap.String("email", email))
			return entities.ErrUserNotFound
		}
		log.Error(ctx, "error storing reset token", zap.Error(err))
		return fmt.Errorf("error storing reset token: %w", err)
	}

	return nil
}

// Ping проверяет доступность базы данных.
func (r *UserRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		logger.Log(ctx).Error(ctx, "database ping failed", zap.Error(err))
		return fmt.Errorf("error pinging database: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user   entities.User
		token  pgtype.Text
		expiry pgtype.Timestamptz
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&token,
		&expiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if token.Valid && expiry.Valid {
		user.SetResetToken(token.String, expiry.Time)
	}

	return &user, nil
}

// resetColumns возвращает значения колонок сброса; без ожидающего сброса обе колонки NULL.
func resetColumns(user *entities.User) (pgtype.Text, pgtype.Timestamptz) {
	if !user.HasPendingReset() {
		return pgtype.Text{}, pgtype.Timestamptz{}
	}
	return pgtype.Text{String: user.ResetToken, Valid: true},
		pgtype.Timestamptz{Time: user.ResetTokenExpiry.UTC(), Valid: true}
}
