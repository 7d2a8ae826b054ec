package notifier

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"classpulse/internal/config"
)

// Notifier delivers reports to a recipient. Callers treat delivery as best
// effort.
type Notifier interface {
	Deliver(ctx context.Context, recipient, subject, body string) error
}

// New returns an SMTP-backed notifier when mail is configured and a log-only
// notifier otherwise, so report runs behave the same either way.
func New(cfg config.SMTPConfig) Notifier {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		log.Println("SMTP not configured, report delivery will be skipped")
		return &logNotifier{}
	}
	return &smtpNotifier{cfg: cfg}
}

type smtpNotifier struct {
	cfg config.SMTPConfig
}

func (n *smtpNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		n.cfg.From, recipient, subject, body)

	auth := smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)
	addr := n.cfg.Host + ":587"
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp delivery to %s failed: %w", recipient, err)
	}
	return nil
}

type logNotifier struct{}

func (n *logNotifier) Deliver(ctx context.Context, recipient, subject, body string) error {
	log.Printf("mail skipped (SMTP unconfigured): to=%s subject=%q", recipient, subject)
	return nil
}
