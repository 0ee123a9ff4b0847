package email

import (
	"context"
	"errors"
	"log"
)

var ErrNoRecipient = errors.New("email has no recipient")

// Message is a single HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages to a transactional email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	log.Printf("INFO [email.LogSender] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.HTML)
	return nil
}
