package repository

import (
	"context"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// SubmissionRepository is the data store client for contact submissions.
// Implementations assign ID and CreatedAt on Insert and must never reuse an ID.
type SubmissionRepository interface {
	DB

	// Insert stores in as a new row and returns the stored record.
	Insert(ctx context.Context, in *model.SubmissionInput) (*model.ContactSubmission, error)

	// List returns submissions newest first (created_at DESC, id DESC) that
	// match opts, along with the total number of matches before pagination.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.ContactSubmission, int, error)

	// FindByID returns ErrNotFound when no row has the given id.
	FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error)

	// Delete removes the row with the given id and reports whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// CountSince counts submissions created at or after since.
	CountSince(ctx context.Context, since time.Time) (int, error)
}
