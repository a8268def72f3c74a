package email

import (
	"fmt"
	"net/smtp"

	"github.com/phocus/phocus/internal/config"
)

// Sender delivers plain text email over SMTP.
type Sender struct {
	host string
	port string
	from string
	pass string
}

// NewSender builds a Sender from the SMTP settings in the config.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		from: cfg.SMTPSender,
		pass: cfg.SMTPPass,
	}
}

// Send sends a plain text email using SMTP.
func (s *Sender) Send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp is not configured")
	}

	auth := smtp.PlainAuth("", s.from, s.pass, s.host)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := s.host + ":" + s.port

	if err := smtp.SendMail(address, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
