package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/config"
)

// EmailSender delivers notification mail
type EmailSender interface {
	Send(to []string, subject, body string) error
}

// EmailService sends mail over plain SMTP
type EmailService struct {
	cfg config.SMTPConfig
}

// NewEmailService creates a new EmailService
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Send delivers a plain-text message to the recipients
func (s *EmailService) Send(to []string, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.Port == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(to, ", "), subject, body))

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	if err := smtp.SendMail(addr, auth, s.cfg.From, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
