// Package mailer sends transactional email (invoices, password resets).
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
)

var (
	ErrInvalidConfig  = errors.New("mailer: invalid configuration")
	ErrInvalidMessage = errors.New("mailer: invalid message")
	ErrFailedToSend   = errors.New("mailer: failed to send email")
)

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Tag         string
	Attachments []Attachment
}

func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Sender delivers a message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}
