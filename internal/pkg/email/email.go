package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
)

//go:embed templates/*
var templateFS embed.FS

const maxRetries = 3

var (
	ErrNotConfigured = errors.New("smtp is not configured")
	ErrAuth          = errors.New("smtp authentication failed")
	ErrConnection    = errors.New("smtp connection failed")
	ErrRejected      = errors.New("smtp server rejected the message")
)

// Detail is a label/value row rendered under the reminder body.
type Detail struct {
	Label string
	Value string
}

// Reminder is the content of an attendance reminder email.
type Reminder struct {
	RecipientName string
	Subject       string
	Title         string
	Body          string
	Date          string
	Details       []Detail
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendReminder(ctx context.Context, to string, r Reminder) error
}

type emailServiceImpl struct {
	cfg  config.SMTPConfig
	html *htmltemplate.Template
	text *texttemplate.Template
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:  cfg,
		html: html,
		text: text,
		send: smtp.SendMail,
	}, nil
}

// SendReminder renders the reminder into HTML and plain-text parts and sends it.
func (s *emailServiceImpl) SendReminder(ctx context.Context, to string, r Reminder) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}

	htmlBody, textBody, err := s.render(r)
	if err != nil {
		return err
	}

	return s.sendMultipart(ctx, to, r.Subject, htmlBody, textBody)
}

func (s *emailServiceImpl) render(r Reminder) (string, string, error) {
	var html bytes.Buffer
	if err := s.html.ExecuteTemplate(&html, "reminder.html", r); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}

	var text bytes.Buffer
	if err := s.text.ExecuteTemplate(&text, "reminder.txt", r); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}

	return html.String(), text.String(), nil
}

func (s *emailServiceImpl) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := newBoundary()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

func (s *emailServiceImpl) sendMultipart(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, s.cfg.From, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = classify(err)
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Bad credentials will not fix themselves.
		if errors.Is(lastErr, ErrAuth) {
			return lastErr
		}

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

// classify wraps a provider error with one of the package sentinels.
func classify(err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch {
		case protoErr.Code == 530 || protoErr.Code == 534 || protoErr.Code == 535:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case protoErr.Code >= 500:
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "credentials") {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	return fmt.Errorf("%w: %v", ErrConnection, err)
}

func newBoundary() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("boundary-%d", time.Now().UnixNano())
	}
	return "boundary-" + hex.EncodeToString(buf[:])
}
