package mail

import (
	"context"
	"fmt"

	"hospicloud/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer delivers the credentials generated for a new account.
type Mailer interface {
	SendCredentials(ctx context.Context, to, displayName, plainPassword string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logrus.Logger
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when no SMTP
// host is configured.
func NewMailer(cfg config.SMTPConfig, log *logrus.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (m *smtpMailer) SendCredentials(ctx context.Context, to, displayName, plainPassword string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", to, displayName)
	msg.SetHeader("Subject", "Welcome to HospiCloud")
	msg.SetBody("text/plain", credentialsBody(displayName, to, plainPassword))

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Warnf("Failed to send credentials mail: %+v", err)
		return err
	}
	return nil
}

type logMailer struct {
	log *logrus.Logger
}

func (m *logMailer) SendCredentials(ctx context.Context, to, displayName, plainPassword string) error {
	m.log.WithField("to", to).Info("SMTP not configured, credentials mail dropped")
	return nil
}

func credentialsBody(displayName, email, plainPassword string) string {
	return fmt.Sprintf("Hello %s,\n\nAn account was created for you.\n\nEmail: %s\nPassword: %s\n",
		displayName, email, plainPassword)
}
