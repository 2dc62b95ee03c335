package config

import (
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"
)

// ErrMailNotConfigured is returned when SMTP_HOST or SMTP_FROM is missing.
var ErrMailNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// Mailer sends HTML mail. Tests replace it with a recorder.
type Mailer interface {
	Send(to []string, subject, html string) error
}

// SMTPMailer delivers through the SMTP server from Settings.
type SMTPMailer struct {
	settings *Settings
}

func NewSMTPMailer(s *Settings) *SMTPMailer {
	return &SMTPMailer{settings: s}
}

func (m *SMTPMailer) Send(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	s := m.settings
	if s.SMTPHost == "" || s.SMTPFrom == "" {
		return ErrMailNotConfigured
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", s.SMTPFrom)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	port := s.SMTPPort
	if port == 0 {
		port = 587
	}
	d := mail.NewDialer(s.SMTPHost, port, s.SMTPUser, s.SMTPPass)

	// STARTTLS is mandatory on 587 for the usual hosted providers.
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         s.SMTPHost,
		InsecureSkipVerify: s.SMTPSkipTLSVerify,
	}

	return d.DialAndSend(msg)
}

// SendMail sends through the SMTP settings in Current.
func SendMail(to []string, subject, html string) error {
	return NewSMTPMailer(Current).Send(to, subject, html)
}
