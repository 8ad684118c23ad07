// Package mailer sends outbound portal email. Sends are best-effort by
// contract: callers log failures and never surface them to end users.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/morgana-orum/portal-api/internal/config"
)

// Mailer is the outbound email collaborator. BrandTag selects the sender
// identity shown for the association.
type Mailer interface {
	Send(to, subject, htmlBody, brandTag string) error
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPassword,
		from: cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody, brandTag string) error {
	if m.host == "" {
		return fmt.Errorf("smtp not configured")
	}

	fromHeader := m.from
	if brandTag != "" {
		fromHeader = fmt.Sprintf("%s <%s>", brandTag, m.from)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		fromHeader, to, subject, htmlBody,
	)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
