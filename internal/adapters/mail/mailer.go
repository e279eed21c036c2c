package mail

// Package mail sends transactional email over SMTP.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// Config holds SMTP settings.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	BaseURL   string // public frontend origin used to build links
	TLSPolicy gomail.TLSPolicy
}

// Mailer implements ports.Mailer over SMTP.
type Mailer struct {
	client *gomail.Client
	from   string
	base   string
	logger *slog.Logger
}

var _ ports.Mailer = (*Mailer)(nil)

// NewMailer builds an SMTP mailer.
func NewMailer(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: SMTP host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail: from address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(cfg.TLSPolicy),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}

	return &Mailer{
		client: client,
		from:   cfg.From,
		base:   cfg.BaseURL,
		logger: logger,
	}, nil
}

// Send composes and delivers the message for the given kind.
func (m *Mailer) Send(ctx context.Context, kind ports.MailKind, email, token string) error {
	subject, body, err := m.compose(kind, token)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail send %s: %w", kind, err)
	}
	m.logger.Info("mail sent", "kind", string(kind))
	return nil
}

func (m *Mailer) compose(kind ports.MailKind, token string) (subject, body string, err error) {
	switch kind {
	case ports.MailKindConfirmation:
		return "Confirm your email address",
			fmt.Sprintf("Welcome!\n\nConfirm your email address by opening:\n\n%s/verify?token=%s\n\nIf you did not sign up, ignore this message.\n", m.base, token),
			nil
	case ports.MailKindPasswordReset:
		return "Reset your password",
			fmt.Sprintf("A password reset was requested for your account.\n\nReset it here:\n\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this message.\n", m.base, token),
			nil
	case ports.MailKindTwoFactor:
		return "Your sign-in code",
			fmt.Sprintf("Your one-time sign-in code is:\n\n%s\n\nIt expires shortly. If you did not try to sign in, change your password.\n", token),
			nil
	default:
		return "", "", fmt.Errorf("mail: unknown kind %q", kind)
	}
}
