package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// NotifyFailurePolicy decides what a submitter is told when the row was stored
// but the notification email could not be sent.
type NotifyFailurePolicy string

const (
	PolicyIgnore   NotifyFailurePolicy = "ignore"
	PolicyDegraded NotifyFailurePolicy = "degraded"
	PolicyFail     NotifyFailurePolicy = "fail"
)

// ParseNotifyFailurePolicy accepts ignore, degraded or fail. Empty means degraded.
func ParseNotifyFailurePolicy(s string) (NotifyFailurePolicy, error) {
	switch p := NotifyFailurePolicy(s); p {
	case "":
		return PolicyDegraded, nil
	case PolicyIgnore, PolicyDegraded, PolicyFail:
		return p, nil
	}
	return "", fmt.Errorf("unknown notify failure policy %q", s)
}

// Messages shown to the submitter.
const (
	MsgSuccess         = "Thank you! Your message has been sent successfully."
	MsgInvalid         = "Please check your form data"
	MsgDegraded        = "Thank you! Your message was received, but the email notification could not be delivered."
	msgGenericTemplate = "Sorry, there was an error sending your message. Please try again or contact me directly at %s."
	msgNotifyTemplate  = "Failed to send email. Please try again or contact directly at %s."
)

// SubmitResult is the outcome of one contact form submission.
type SubmitResult struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Errors       map[string]string `json:"errors,omitempty"`
	SubmissionID int64             `json:"id,omitempty"`

	// Err is set whenever something went wrong, including a degraded success.
	Err *Error `json:"-"`
}

// ListQuery is an admin listing request. Page is 1-based; Limit 0 returns everything.
type ListQuery struct {
	Query string
	Page  int
	Limit int
}

// ContactService runs the contact form pipeline and the admin operations on
// stored submissions.
type ContactService interface {
	// Submit validates, stores and then notifies. It never returns a Go error;
	// every outcome is described by the result.
	Submit(ctx context.Context, raw map[string]string) *SubmitResult

	List(ctx context.Context, q ListQuery) (*model.SubmissionPage, error)

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id int64) (*model.ContactSubmission, error)

	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	Stats(ctx context.Context) (*model.SubmissionStats, error)

	// Export writes every submission as CSV, newest first.
	Export(ctx context.Context, w io.Writer) error
}

// ContactConfig tunes the submission pipeline.
type ContactConfig struct {
	StoreTimeout  time.Duration
	NotifyTimeout time.Duration
	Policy        NotifyFailurePolicy
	FallbackEmail string
	// Provider labels notification metrics.
	Provider string
}
