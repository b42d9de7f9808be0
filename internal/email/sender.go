package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
)

type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	HTML     string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", "smtp":
		return NewSMTPSender(cfg.SMTP), nil
	case "resend":
		return NewResendSender(cfg.ResendAPIKey), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey), nil
	}
	return nil, fmt.Errorf("unknown email provider: %s (supported: smtp, resend, sendgrid)", cfg.Provider)
}

// ValidateEmail checks for injection characters and RFC 5322 compliance
func ValidateEmail(email string) error {
	if strings.ContainsAny(email, "\r\n,;") {
		return fmt.Errorf("email contains invalid characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

func validateMessage(msg Message) error {
	if err := ValidateEmail(msg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := ValidateEmail(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	// Reject headers with CRLF to prevent injection
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("subject contains invalid characters")
	}
	if strings.ContainsAny(msg.FromName, "\r\n") {
		return fmt.Errorf("sender name contains invalid characters")
	}
	return nil
}

// fromHeader renders the From value, with an optional display name.
func fromHeader(msg Message) string {
	if msg.FromName == "" {
		return msg.From
	}
	return fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
}
