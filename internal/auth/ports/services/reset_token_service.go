package services

// ResetTokenService генерирует одноразовые токены сброса пароля.
type ResetTokenService interface {
	Generate() (string, error)
}
