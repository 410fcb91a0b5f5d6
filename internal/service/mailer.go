package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/food-ordering/internal/config"
)

// Mailer delivers one-time codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, subject, otp string, expiresAt time.Time) error
}

// NewMailer returns an SMTP mailer, or a log-only mailer when no SMTP host
// is configured.
func NewMailer(cfg config.MailConfig, log logrus.FieldLogger) Mailer {
	if cfg.Host == "" {
		return logMailer{log: log}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}
}

// SMTPMailer sends mail through gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, subject, otp string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", otpBody(otp, expiresAt))
	return m.dialer.DialAndSend(msg)
}

func otpBody(otp string, expiresAt time.Time) string {
	return fmt.Sprintf(`<p>Your TOKEN is <b>%s</b>.</p><p>It expires at %s.</p>`,
		otp, expiresAt.UTC().Format("2006-01-02 15:04 MST"))
}

type logMailer struct{ log logrus.FieldLogger }

func (l logMailer) SendOTP(_ context.Context, to, subject, otp string, expiresAt time.Time) error {
	l.log.WithFields(logrus.Fields{"to": to, "subject": subject, "expires_at": expiresAt}).
		Info("smtp disabled; mail not sent")
	return nil
}
