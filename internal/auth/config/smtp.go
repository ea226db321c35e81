package config

// SMTPConfig содержит параметры исходящей почты.
// Пустой Host означает, что письма только пишутся в лог.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"AUTH_SMTP_HOST" env-default:""`
	Port     int    `yaml:"port" env:"AUTH_SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"AUTH_SMTP_USER" env-default:""`
	Password string `yaml:"password" env:"AUTH_SMTP_PASSWORD" env-default:""`
	From     string `yaml:"from" env:"AUTH_SMTP_FROM" env-default:"no-reply@localhost"`
}

// Enabled сообщает, настроена ли отправка через SMTP.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}
