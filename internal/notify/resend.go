package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ErrInvalidResendKey is returned for API keys that lack the "re_" prefix.
var ErrInvalidResendKey = errors.New("invalid Resend API key format")

// resendAPI is the subset of the Resend emails service used here.
type resendAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier sends notifications through the Resend HTTP API.
type ResendNotifier struct {
	emails resendAPI
}

// NewResendNotifier validates the key format and creates a client.
func NewResendNotifier(apiKey string) (*ResendNotifier, error) {
	if !strings.HasPrefix(apiKey, "re_") {
		return nil, ErrInvalidResendKey
	}
	client := resend.NewClient(apiKey)
	return &ResendNotifier{emails: client.Emails}, nil
}

// Send delivers msg through Resend.
func (n *ResendNotifier) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	resp, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return nil, fmt.Errorf("resend send: %w", err)
	}
	id := ""
	if resp != nil {
		id = resp.Id
	}
	return &Receipt{ID: id, Provider: "resend"}, nil
}
