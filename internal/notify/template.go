package notify

import (
	"fmt"
	"time"

	"github.com/osteele/liquid"
	"github.com/portfolio/backend/internal/model"
)

// subjectPrefix precedes the submitter's subject line in the notification.
const subjectPrefix = "New Contact Form Message: "

// Every user-supplied value goes through the escape filter.
const contactTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px;">
    New Contact Form Submission
  </h2>
  <div style="margin: 20px 0;">
    <p><strong>From:</strong> {{ first_name | escape }} {{ last_name | escape }} ({{ email | escape }})</p>
    <p><strong>Subject:</strong> {{ subject | escape }}</p>
    <p><strong>Timestamp:</strong> {{ timestamp }}</p>
    <p><strong>Submission ID:</strong> {{ id }}</p>
  </div>
  <div style="margin: 20px 0; background: #f5f5f5; padding: 20px; border-radius: 5px;">
    <p><strong>Message:</strong></p>
    <div style="white-space: pre-wrap;">{{ message | escape }}</div>
  </div>
</div>
`

// Composer turns stored submissions into notification messages for a fixed
// sender and recipient list.
type Composer struct {
	tpl  *liquid.Template
	from string
	to   []string
}

// NewComposer parses the notification template.
func NewComposer(from string, to []string) (*Composer, error) {
	engine := liquid.NewEngine()
	tpl, err := engine.ParseString(contactTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse notification template: %w", err)
	}
	return &Composer{tpl: tpl, from: from, to: to}, nil
}

// Compose renders the notification for s. Replies go to the submitter.
func (c *Composer) Compose(s *model.ContactSubmission) (*Message, error) {
	body, err := c.tpl.RenderString(liquid.Bindings{
		"id":         s.ID,
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"subject":    s.Subject,
		"message":    s.Message,
		"timestamp":  s.CreatedAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return nil, fmt.Errorf("render notification: %w", err)
	}
	return &Message{
		From:     c.from,
		To:       append([]string(nil), c.to...),
		Subject:  subjectPrefix + s.Subject,
		HTMLBody: body,
		ReplyTo:  s.Email,
	}, nil
}
