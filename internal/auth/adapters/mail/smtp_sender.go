// Package mail доставляет письма сброса пароля: через SMTP или в лог для локального запуска.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"credkeeper/internal/auth/domain/services"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
)

const (
	msgSendingMail   = "sending mail via SMTP"
	msgMailSent      = "mail sent"
	msgErrBuildMsg   = "failed to build mail message"
	msgErrSendingMsg = "failed to send mail"

	errCtxCreateClient = "creating SMTP client"
	errCtxBuildMessage = "building message"
	errCtxSendMessage  = "sending message"

	defaultTimeout = 15 * time.Second
)

// ErrEmptyHost возвращается при попытке создать SMTP-отправителя без адреса сервера.
var ErrEmptyHost = errors.New("smtp host is empty")

// SMTPConfig содержит параметры подключения к SMTP серверу.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender отправляет письма через SMTP с помощью go-mail.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender создает отправителя. Аутентификация включается, если задан User.
func NewSMTPSender(cfg SMTPConfig) (svc.MailSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%s: %w", errCtxCreateClient, ErrEmptyHost)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxCreateClient, err)
	}

	return &SMTPSender{client: client, from: cfg.From}, nil
}

// Send отправляет HTML-письмо одному получателю. Повторные попытки не выполняются.
func (s *SMTPSender) Send(ctx context.Context, mail *services.ResetMail) error {
	log := logger.Log(ctx).With(zap.String("method", "Send"), zap.String("to", mail.To))

	msg, err := buildMessage(s.from, mail)
	if err != nil {
		log.Error(ctx, msgErrBuildMsg, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxBuildMessage, err)
	}

	log.Debug(ctx, msgSendingMail)
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error(ctx, msgErrSendingMsg, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxSendMessage, err)
	}

	log.Info(ctx, msgMailSent)
	return nil
}

func buildMessage(from string, mail *services.ResetMail) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(mail.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(mail.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, mail.HTML)
	return msg, nil
}
