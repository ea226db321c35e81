package services

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"credkeeper/internal/auth/domain/services"
	svc "credkeeper/internal/auth/ports/services"
)

const (
	errMsgFailedToGenerateHash = "failed to generate password hash"
	errMsgWaitingForSlot       = "waiting for hashing slot"
)

// ServiceBcrypt реализует интерфейс PasswordService.
// Количество одновременных вычислений bcrypt ограничено семафором.
type ServiceBcrypt struct {
	cost  int
	slots *semaphore.Weighted
}

// NewBcrypt создает новый экземпляр сервиса bcrypt.
func NewBcrypt(cost, maxConcurrency int) svc.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.NumCPU()
	}
	return &ServiceBcrypt{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(maxConcurrency)),
	}
}

// Hash хэширует пароль с помощью bcrypt.
func (s *ServiceBcrypt) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", services.ErrInvalidPassword
	}
	if len(password) > services.MaxPasswordBytes {
		return "", services.ErrPasswordTooLong
	}

	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.slots.Release(1)

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errMsgFailedToGenerateHash, services.ErrHashingFailed, err)
	}

	return string(hashedBytes), nil
}

// Verify проверяет соответствие пароля хэшу.
// Несовпадение и поврежденный хэш дают false без ошибки.
func (s *ServiceBcrypt) Verify(ctx context.Context, password, hash string) (bool, error) {
	if password == "" || hash == "" {
		return false, nil
	}

	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.slots.Release(1)

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}

	return true, nil
}

func (s *ServiceBcrypt) acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%s: %w: %w", errMsgWaitingForSlot, services.ErrHashingCancelled, err)
	}
	return nil
}

// GetCostForTest возвращает стоимость хэширования для тестирования.
func (s *ServiceBcrypt) GetCostForTest() int {
	return s.cost
}
