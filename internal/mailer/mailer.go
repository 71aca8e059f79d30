package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL prefixes links placed in mails, e.g. the verification link.
	BaseURL string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer renders the service's notification mails and sends them over SMTP.
type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send sendFunc
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.cfg.Enabled {
		m.log.Info().Str("to", to).Str("subject", subject).Msg("mail disabled, message not sent")
		return nil
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("send email: header contains line break")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, to, subject, body,
	)

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	if err := m.send(addr, a, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		m.log.Warn().Err(err).Str("to", to).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func (m *Mailer) SendVerification(ctx context.Context, to, name, eventTitle, token string) error {
	link := strings.TrimRight(m.cfg.BaseURL, "/") + "/v1/attendees/verify?token=" + token
	body := fmt.Sprintf("Hello %s,\n\nThank you for registering for %q.\nPlease confirm your email address by opening the link below:\n\n%s\n",
		name, eventTitle, link)
	return m.Send(ctx, to, "Confirm your registration for "+eventTitle, body)
}

func (m *Mailer) SendMessageNotification(ctx context.Context, to, recipientName, senderName, subject, eventTitle string) error {
	body := fmt.Sprintf("Hello %s,\n\n%s sent you a message about %q:\n\n  %s\n\nSign in to the administration panel to read it.\n",
		recipientName, senderName, eventTitle, subject)
	return m.Send(ctx, to, "New message: "+subject, body)
}

func (m *Mailer) SendImportFinished(ctx context.Context, to, originalName, status string, succeeded, failed int) error {
	body := fmt.Sprintf("The import of %q finished with status %s.\n\nRows imported: %d\nRows failed: %d\n",
		originalName, status, succeeded, failed)
	return m.Send(ctx, to, "Import "+status+": "+originalName, body)
}
