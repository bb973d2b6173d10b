package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// MemorySubmissionRepository keeps submissions in process memory. It is used
// for local development and tests; everything is lost on restart.
type MemorySubmissionRepository struct {
	mu     sync.Mutex
	rows   []*model.ContactSubmission
	nextID int64
	last   time.Time
	now    func() time.Time
}

// NewMemorySubmissionRepository returns an empty in-memory repository.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{nextID: 1, now: time.Now}
}

var _ SubmissionRepository = (*MemorySubmissionRepository)(nil)

// Ping always succeeds.
func (r *MemorySubmissionRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Insert stores a copy of in with a fresh id and a non-decreasing created_at.
func (r *MemorySubmissionRepository) Insert(ctx context.Context, in *model.SubmissionInput) (*model.ContactSubmission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if now.Before(r.last) {
		now = r.last
	}
	r.last = now

	s := &model.ContactSubmission{
		ID:        r.nextID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: now,
	}
	r.nextID++
	r.rows = append(r.rows, s)
	out := *s
	return &out, nil
}

func matches(s *model.ContactSubmission, q string) bool {
	if q == "" {
		return true
	}
	for _, v := range []string{s.FirstName, s.LastName, s.Email, s.Subject, s.Message} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// List returns matching submissions newest first. A zero Limit returns all of them.
func (r *MemorySubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.ContactSubmission, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	q := strings.ToLower(strings.TrimSpace(opts.Query))

	r.mu.Lock()
	var found []*model.ContactSubmission
	for _, s := range r.rows {
		if matches(s, q) {
			cp := *s
			found = append(found, &cp)
		}
	}
	r.mu.Unlock()

	sort.SliceStable(found, func(i, j int) bool {
		if !found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].CreatedAt.After(found[j].CreatedAt)
		}
		return found[i].ID > found[j].ID
	})

	total := len(found)
	if opts.Limit > 0 {
		start := min(max(opts.Offset, 0), total)
		end := start + min(opts.Limit, total-start)
		found = found[start:end]
	}
	return found, total, nil
}

// FindByID returns a single submission or ErrNotFound.
func (r *MemorySubmissionRepository) FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the row and reports whether it existed.
func (r *MemorySubmissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.rows {
		if s.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// CountSince counts rows with created_at >= since.
func (r *MemorySubmissionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.rows {
		if !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
