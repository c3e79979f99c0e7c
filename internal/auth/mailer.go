package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"menu-planner/internal/config"
)

// Mailer delivers verification codes.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// NewMailer returns an SMTP mailer when SMTP is configured, otherwise one that logs codes.
func NewMailer(cfg config.SMTPConfig, log *zap.Logger) Mailer {
	if !cfg.Enabled() {
		log.Warn("SMTP_HOST not set, verification codes are written to the log")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends mail through gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) SendVerificationCode(_ context.Context, to, code string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Menu Planner verification code")
	message.SetBody("text/plain", fmt.Sprintf("Your verification code is %s.\n\nSend /verify %s %s to the bot to activate your account.", code, to, code))
	message.AddAlternative("text/html", `
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<h2 style="color: #333; text-align: center;">Menu Planner</h2>
			<p>Your verification code is:</p>
			<p style="text-align: center; font-size: 28px; letter-spacing: 6px;"><b>`+code+`</b></p>
			<p>Send <code>/verify `+to+` `+code+`</code> to the bot to activate your account.</p>
		</div>
	`)
	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes codes to the log. Used when SMTP is not configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mail")}
}

func (m *LogMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.log.Info("verification code", zap.String("to", to), zap.String("code", code))
	return nil
}
