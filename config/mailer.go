package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	mail "github.com/go-mail/mail/v2"
)

var (
	smtpHost = os.Getenv("SMTP_HOST")
	smtpPort = func() int {
		p, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if p == 0 {
			p = 587
		}
		return p
	}()
	smtpUser      = os.Getenv("SMTP_USER")
	smtpPass      = os.Getenv("SMTP_PASS")
	smtpFrom      = os.Getenv("SMTP_FROM") // e.g. "Change Orders <no-reply@your.org>"
	skipTLSVerify = os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1"
)

// MailResult describes how a message left the system: mode is "smtp" for a
// real send, "log" for the local outbox used when SMTP is not configured.
// PreviewURL points at the written message in log mode.
type MailResult struct {
	Mode       string
	PreviewURL string
}

// SendMail delivers a decision notification. Without SMTP configuration it
// falls back to writing the message under logs/outbox so the demo works out
// of the box.
func SendMail(to []string, subject, text, html string) (MailResult, error) {
	if len(to) == 0 {
		return MailResult{}, fmt.Errorf("no recipients")
	}
	if smtpHost == "" || smtpFrom == "" {
		previewURL, err := writeOutboxMessage(to, subject, text, html)
		if err != nil {
			return MailResult{Mode: "log"}, err
		}
		return MailResult{Mode: "log", PreviewURL: previewURL}, nil
	}

	m := mail.NewMessage()
	m.SetHeader("From", smtpFrom)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	if html != "" {
		m.AddAlternative("text/html", html)
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	// Mandatory STARTTLS on port 587 (works with Gmail/Office365).
	d.StartTLSPolicy = mail.MandatoryStartTLS

	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: skipTLSVerify, // dev only: set SMTP_SKIP_TLS_VERIFY=1 to skip cert checks
	}

	if err := d.DialAndSend(m); err != nil {
		return MailResult{Mode: "smtp"}, err
	}
	return MailResult{Mode: "smtp"}, nil
}

func writeOutboxMessage(to []string, subject, text, html string) (string, error) {
	outboxDir := filepath.Join("logs", "outbox")
	if err := os.MkdirAll(outboxDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create outbox directory: %w", err)
	}

	path := filepath.Join(outboxDir, fmt.Sprintf("%d.eml", time.Now().UnixNano()))
	body := fmt.Sprintf("To: %v\nSubject: %s\n\n%s\n", to, subject, text)
	if html != "" {
		body += "\n--- html ---\n" + html + "\n"
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write outbox message: %w", err)
	}
	return path, nil
}
