package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/model"
)

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

// Ensure PgSubmissionRepository implements SubmissionRepository at compile time.
var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

const pgSubmissionColumns = `id, first_name, last_name, email, subject, message, created_at`

// pgSearchClause matches $1 against every text column; an empty $1 matches all rows.
const pgSearchClause = `($1 = '%%' OR lower(first_name) LIKE $1
	OR lower(last_name) LIKE $1 OR lower(email) LIKE $1
	OR lower(subject) LIKE $1 OR lower(message) LIKE $1)`

// Ping checks the connection pool.
func (r *PgSubmissionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Insert adds a contact_submissions row; id and created_at come from the
// RETURNING clause.
func (r *PgSubmissionRepository) Insert(ctx context.Context, in *model.SubmissionInput) (*model.ContactSubmission, error) {
	s := &model.ContactSubmission{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contact_submissions (first_name, last_name, email, subject, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		in.FirstName, in.LastName, in.Email, in.Subject, in.Message,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return s, nil
}

// List returns matching submissions newest first. A zero Limit returns all of them.
func (r *PgSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.ContactSubmission, int, error) {
	pattern := likePattern(opts.Query)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM contact_submissions WHERE `+pgSearchClause, pattern,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	query := `SELECT ` + pgSubmissionColumns + ` FROM contact_submissions
	          WHERE ` + pgSearchClause + `
	          ORDER BY created_at DESC, id DESC`
	args := []any{pattern}
	if opts.Limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*model.ContactSubmission
	for rows.Next() {
		var s model.ContactSubmission
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Subject, &s.Message, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &s)
	}
	return out, total, rows.Err()
}

// FindByID returns a single submission or ErrNotFound.
func (r *PgSubmissionRepository) FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error) {
	var s model.ContactSubmission
	err := r.pool.QueryRow(ctx,
		`SELECT `+pgSubmissionColumns+` FROM contact_submissions WHERE id = $1`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Subject, &s.Message, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission %d: %w", id, err)
	}
	return &s, nil
}

// Delete removes the row and reports whether it existed.
func (r *PgSubmissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete submission %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountSince counts rows with created_at >= since.
func (r *PgSubmissionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM contact_submissions WHERE created_at >= $1`, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
