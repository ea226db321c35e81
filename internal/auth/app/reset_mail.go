package app

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"credkeeper/internal/auth/domain/services"
	"credkeeper/internal/auth/i18n"
)

const (
	queryToken = "token"
	queryEmail = "email"

	errCtxParsingLinkBase = "parsing reset link base"
	errCtxRenderingMail   = "rendering reset mail"
)

var resetMailTemplate = template.Must(template.New("reset").Parse(
	`<h2>{{.Heading}}</h2>
<p>{{.Instruction}}</p>
<a href="{{.Link}}" target="_blank">{{.Link}}</a>
<p>{{.ExpiryNote}}</p>
`))

type resetMailView struct {
	Heading     string
	Instruction string
	Link        string
	ExpiryNote  string
}

// buildResetLink добавляет token и email в query ссылки сброса.
func buildResetLink(base, email, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtxParsingLinkBase, err)
	}

	q := u.Query()
	q.Set(queryToken, token)
	q.Set(queryEmail, email)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// composeResetMail собирает локализованное письмо со ссылкой сброса.
func composeResetMail(lang, to, link string) (*services.ResetMail, error) {
	var body bytes.Buffer
	err := resetMailTemplate.Execute(&body, resetMailView{
		Heading:     i18n.T(lang, i18n.PasswordResetRequest),
		Instruction: i18n.T(lang, i18n.ClickLinkToReset),
		Link:        link,
		ExpiryNote:  i18n.T(lang, i18n.LinkExpiresIn10Min),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxRenderingMail, err)
	}

	return &services.ResetMail{
		To:      to,
		Subject: i18n.T(lang, i18n.PasswordReset),
		HTML:    body.String(),
		Link:    link,
	}, nil
}
