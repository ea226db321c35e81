package entities

import (
	"errors"
	"time"
)

// ErrUserNotFound возвращается, если пользователь не найден.
var ErrUserNotFound = errors.New("user not found")

// User представляет основную сущность домена пользователя.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	ResetToken       string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetResetToken выставляет токен сброса пароля вместе со сроком его действия.
func (u *User) SetResetToken(token string, expiresAt time.Time) {
	expiry := expiresAt
	u.ResetToken = token
	u.ResetTokenExpiry = &expiry
}

// ClearResetToken удаляет токен сброса и срок действия.
func (u *User) ClearResetToken() {
	u.ResetToken = ""
	u.ResetTokenExpiry = nil
}

// HasPendingReset сообщает, ожидает ли пользователь сброса пароля.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != "" && u.ResetTokenExpiry != nil
}

// ResetTokenActive проверяет, что токен совпадает и срок действия еще не истек.
// Истечение ровно в момент now считается действующим токеном.
func (u *User) ResetTokenActive(token string, now time.Time) bool {
	if !u.HasPendingReset() || token == "" {
		return false
	}
	if u.ResetToken != token {
		return false
	}
	return !u.ResetTokenExpiry.Before(now)
}
