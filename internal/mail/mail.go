// Package mail delivers transactional email such as password reset links.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers messages. Implementations return an error when the
// provider did not accept the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipients = errors.New("mail: message has no recipients")

// ResendSender sends through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    *slog.Logger
}

func NewResendSender(apiKey, from string, log *slog.Logger) *ResendSender {
	if log == nil {
		log = slog.Default()
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from, log: log}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		s.log.Error("mail_send_failed", "subject", msg.Subject, "error", err)
		return fmt.Errorf("resend send failed: %w", err)
	}
	s.log.Info("mail_sent", "message_id", sent.Id, "subject", msg.Subject)
	return nil
}

// LogSender only logs messages. It is used when no mail provider is configured.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("mail_not_delivered", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}

// New picks the Resend sender when an API key is set and LogSender otherwise.
func New(apiKey, from string, log *slog.Logger) Sender {
	if apiKey == "" {
		return LogSender{Log: log}
	}
	return NewResendSender(apiKey, from, log)
}
