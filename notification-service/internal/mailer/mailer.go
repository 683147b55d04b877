package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a rendered e-mail ready for delivery.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrDeliveryFailed = errors.New("mail delivery failed")

// Sender is the subset of the SendGrid client the mailer uses.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridMailer struct {
	client   Sender
	fromName string
	fromAddr string
	log      zerolog.Logger
}

func NewSendGridMailer(apiKey, fromName, fromAddr string, log zerolog.Logger) *SendGridMailer {
	return NewSendGridMailerWithSender(sendgrid.NewSendClient(apiKey), fromName, fromAddr, log)
}

func NewSendGridMailerWithSender(client Sender, fromName, fromAddr string, log zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{client: client, fromName: fromName, fromAddr: fromAddr, log: log}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("%w: empty recipient", ErrDeliveryFailed)
	}

	email := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.fromAddr),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Text,
		msg.HTML,
	)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if resp.StatusCode >= 400 {
		m.log.Error().Int("status", resp.StatusCode).Str("body", resp.Body).Str("to", msg.To).Msg("sendgrid rejected message")
		return fmt.Errorf("%w: sendgrid status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	m.log.Info().Int("status", resp.StatusCode).Str("to", msg.To).Str("subject", msg.Subject).Msg("mail sent")
	return nil
}

// LogMailer only logs messages. Used when no SendGrid key is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Int("html_bytes", len(msg.HTML)).Msg("mail not sent, log mailer active")
	return nil
}
