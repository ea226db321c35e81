package services

import (
	"errors"
)

// PasswordErrors содержит ошибки, связанные с паролями.
var (
	ErrHashingFailed    = errors.New("failed to hash password")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrHashingCancelled = errors.New("password hashing cancelled")
)

// MaxPasswordBytes - предел длины пароля для bcrypt.
const MaxPasswordBytes = 72
