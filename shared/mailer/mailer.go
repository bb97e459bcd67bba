package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

var ErrMissingCredentials = errors.New("smtp credentials are not configured")

// CredentialSource supplies the SMTP account. It is consulted on every send so
// rotated credentials take effect without a restart.
type CredentialSource interface {
	SMTPCredentials(ctx context.Context) (address, password string, err error)
}

// SendFunc delivers a composed message through dialer.
type SendFunc func(dialer *gomail.Dialer, msg *gomail.Message) error

// Mailer represents an email sender.
type Mailer struct {
	config      Config
	credentials CredentialSource
	send        SendFunc
	logger      *zerolog.Logger
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithSendFunc replaces the SMTP delivery function.
func WithSendFunc(send SendFunc) Option {
	return func(m *Mailer) {
		m.send = send
	}
}

// NewMailer creates a new Mailer instance with the given configuration.
func NewMailer(cfg Config, credentials CredentialSource, logger *zerolog.Logger, opts ...Option) *Mailer {
	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	m := &Mailer{
		config:      cfg,
		credentials: credentials,
		send:        dialAndSend,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Send delivers an HTML email to a single recipient and reports whether it was
// handed to the SMTP server. Failures are logged, never returned.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) bool {
	err := m.Deliver(ctx, Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
	})
	if err != nil {
		m.logger.Error().Err(err).Str("subject", subject).Msg("failed to send email")
		return false
	}

	return true
}

// Deliver sends email using the current SMTP credentials.
func (m *Mailer) Deliver(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	address, password, err := m.credentials.SMTPCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to load smtp credentials: %w", err)
	}
	if address == "" || password == "" {
		return ErrMissingCredentials
	}

	msg := gomail.NewMessage()
	m.setEmailMessage(msg, address, email)

	dialer := gomail.NewDialer(m.config.Host, m.config.Port, address, password)

	return m.send(dialer, msg)
}

func (m *Mailer) setEmailMessage(msg *gomail.Message, from string, email Email) {
	msg.SetAddressHeader("From", from, m.config.FromName)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
}

func dialAndSend(dialer *gomail.Dialer, msg *gomail.Message) error {
	return dialer.DialAndSend(msg)
}

// Config holds the SMTP server the mailer talks to. The account itself comes
// from the CredentialSource.
type Config struct {
	Host     string `env:"SMTP_HOST" yaml:"host"`
	Port     int    `env:"SMTP_PORT" yaml:"port"`
	FromName string `env:"SMTP_FROM_NAME" yaml:"from_name"`
}

// validate checks if the Mailer configuration is valid.
func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}

	return nil
}
