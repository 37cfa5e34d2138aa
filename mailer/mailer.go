package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no delivery credentials are set.
var ErrNotConfigured = errors.New("email service not configured")

// ErrInvalidAddress is returned for a malformed recipient.
var ErrInvalidAddress = errors.New("invalid email address")

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ValidateAddress checks that addr is a single bare email address.
func ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || !strings.Contains(addr[strings.LastIndex(addr, "@")+1:], ".") {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// Resend sends mail through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResend creates a Resend sender. An empty apiKey yields a sender whose
// Send always returns ErrNotConfigured.
func NewResend(apiKey, from string, logger *zap.Logger) *Resend {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resend{from: from, logger: logger}
	if apiKey != "" {
		r.client = resend.NewClient(apiKey)
	}
	return r
}

// Configured reports whether an API key was supplied.
func (r *Resend) Configured() bool { return r.client != nil }

// Send implements Sender.
func (r *Resend) Send(ctx context.Context, msg Message) error {
	if r.client == nil {
		return ErrNotConfigured
	}
	if err := ValidateAddress(msg.To); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{strings.TrimSpace(msg.To)},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	sent, err := r.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	r.logger.Info("report email sent", zap.String("id", sent.Id), zap.Int("attachments", len(req.Attachments)))
	return nil
}
