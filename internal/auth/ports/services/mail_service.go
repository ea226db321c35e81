package services

import (
	"context"

	"credkeeper/internal/auth/domain/services"
)

// MailSender доставляет письма пользователям.
type MailSender interface {
	Send(ctx context.Context, mail *services.ResetMail) error
}
