package contact

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig points the relay at a mail server. Recipient is the site
// owner's inbox.
type SMTPConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	Recipient string
}

// SMTP delivers messages through a plain mail server instead of a hosted
// relay.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.Recipient == "" {
		cfg.Recipient = cfg.User
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTP) Configured() error {
	if s.cfg.User == "" || s.cfg.Password == "" {
		return fmt.Errorf("smtp: credentials not configured")
	}
	return nil
}

// Send ignores ctx cancellation once the SMTP dialogue has started;
// net/smtp has no context support.
func (s *SMTP) Send(ctx context.Context, p Params) error {
	if err := s.Configured(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	err := s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{s.cfg.Recipient}, s.compose(p))
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (s *SMTP) compose(p Params) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, p.FromName, p.ReplyTo, p.Message)

	return []byte("To: " + s.cfg.Recipient + "\r\n" +
		"Subject: Portfolio Contact: " + headerSafe(p.FromName) + "\r\n" +
		"From: " + s.cfg.User + "\r\n" +
		"Reply-To: " + headerSafe(p.ReplyTo) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// headerSafe strips line breaks so visitor input cannot add headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
