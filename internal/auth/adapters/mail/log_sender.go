package mail

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

const (
	logMailToLog    = "smtp is not configured, reset mail written to log"
	logMailFullLink = "reset link"
	redactedToken   = "REDACTED"
	resetTokenParam = "token"
	unparseableLink = "<unparseable link>"
)

// LogSender вместо отправки пишет письмо в лог. Используется, когда SMTP не настроен.
type LogSender struct{}

// NewLogSender создает отправителя, пишущего в лог.
func NewLogSender() svc.MailSender {
	return &LogSender{}
}

// Send логирует получателя, тему и ссылку без токена.
// Полная ссылка пишется только на уровне debug.
func (LogSender) Send(ctx context.Context, mail *services.ResetMail) error {
	log := logger.Log(ctx).With(zap.String("to", mail.To))
	log.Info(ctx, logMailToLog,
		zap.String("subject", mail.Subject),
		zap.String("link", redactLink(mail.Link)))
	log.Debug(ctx, logMailFullLink, zap.String("link", mail.Link))
	return nil
}

// redactLink заменяет значение параметра token.
func redactLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return unparseableLink
	}
	q := u.Query()
	if q.Has(resetTokenParam) {
		q.Set(resetTokenParam, redactedToken)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
