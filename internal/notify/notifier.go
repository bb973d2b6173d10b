// Package notify sends contact form notification emails.
package notify

import (
	"context"
	"errors"
)

// ErrDisabled is returned by a Notifier that has no provider configured.
// Callers treat it as "skipped", not as a delivery failure.
var ErrDisabled = errors.New("notifier disabled")

// Message is an outbound notification email.
type Message struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string
	ReplyTo  string
}

// Receipt identifies an accepted message at the provider.
type Receipt struct {
	ID       string
	Provider string
}

// Notifier is the email client used by the submission pipeline.
type Notifier interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}

// Disabled is a Notifier that never sends.
type Disabled struct{}

// Send always returns ErrDisabled.
func (Disabled) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	return nil, ErrDisabled
}

func validate(msg *Message) error {
	switch {
	case msg == nil:
		return errors.New("nil message")
	case msg.From == "":
		return errors.New("missing sender address")
	case len(msg.To) == 0:
		return errors.New("missing recipient address")
	}
	return nil
}
