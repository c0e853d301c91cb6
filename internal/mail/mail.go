// Package mail sends outbound email for the contact form.
package mail

import (
	"fmt"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"gopkg.in/gomail.v2"
)

// ContactMessage is the payload of the contact form. Nothing is persisted;
// the message exists only for the duration of the send.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Validate checks all four fields are present before any transport attempt.
func (m *ContactMessage) Validate() error {
	var missing []string
	if strings.TrimSpace(m.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(m.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(m.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(m.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return models.NewValidationError(
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// Mailer delivers contact messages to the configured recipient.
type Mailer interface {
	SendContactMessage(msg *ContactMessage) error
}

// SMTPMailer sends mail through an SMTP relay with STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewSMTPMailer builds a mailer from the configured SMTP credentials.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPUser,
		to:     cfg.ContactEmail,
	}
}

// SendContactMessage sends one email with the contact form contents. The
// call blocks for the duration of the SMTP exchange; transport failures come
// back as a DeliveryError.
func (s *SMTPMailer) SendContactMessage(msg *ContactMessage) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", "New Message")
	m.SetBody("text/plain", fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nMessage: %s\n",
		msg.Name, msg.Email, msg.Phone, msg.Message))

	if err := s.dialer.DialAndSend(m); err != nil {
		return models.NewDeliveryError(err)
	}
	return nil
}
