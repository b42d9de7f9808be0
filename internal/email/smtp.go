package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
)

type SMTPSender struct {
	config config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{config: cfg}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Send delivers the message over SMTP with STARTTLS. net/smtp upgrades
// the connection automatically when the server advertises STARTTLS,
// which Gmail's submission port always does.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := validateMessage(msg); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader(msg)))
	message.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	message.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, []byte(message.String())); err != nil {
		return sanitizeSMTPError(err)
	}
	return nil
}

// sanitizeSMTPError keeps credentials and server banners out of logs.
func sanitizeSMTPError(err error) error {
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "auth") {
		return fmt.Errorf("SMTP authentication failed")
	}
	if strings.Contains(s, "certificate") {
		return fmt.Errorf("TLS certificate error")
	}
	return fmt.Errorf("SMTP error: check your configuration")
}
