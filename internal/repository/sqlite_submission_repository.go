package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/model"
	"modernc.org/sqlite"
)

// SQLite's built-in lower() folds ASCII only. unicode_lower applies the same
// folding as likePattern so search is case-insensitive for any script.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS contact_submissions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT    NOT NULL,
	last_name  TEXT    NOT NULL,
	email      TEXT    NOT NULL,
	subject    TEXT    NOT NULL,
	message    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS contact_submissions_created_at_idx
	ON contact_submissions (created_at DESC, id DESC);`

// OpenSQLite opens (creating if needed) the SQLite database at path and
// applies the contact_submissions schema. ":memory:" is accepted.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return db, nil
}

// SQLiteSubmissionRepository stores submissions in a local SQLite file.
// created_at is kept as Unix nanoseconds so ordering is numeric.
type SQLiteSubmissionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSubmissionRepository creates a repository over an open database.
func NewSQLiteSubmissionRepository(db *sql.DB) *SQLiteSubmissionRepository {
	return &SQLiteSubmissionRepository{db: db, now: time.Now}
}

var _ SubmissionRepository = (*SQLiteSubmissionRepository)(nil)

const sqliteSubmissionColumns = `id, first_name, last_name, email, subject, message, created_at`

const sqliteSearchClause = `(? = '%%' OR unicode_lower(first_name) LIKE ? ESCAPE '\'
	OR unicode_lower(last_name) LIKE ? ESCAPE '\' OR unicode_lower(email) LIKE ? ESCAPE '\'
	OR unicode_lower(subject) LIKE ? ESCAPE '\' OR unicode_lower(message) LIKE ? ESCAPE '\')`

func searchArgs(pattern string) []any {
	return []any{pattern, pattern, pattern, pattern, pattern, pattern}
}

// Ping checks the database handle.
func (r *SQLiteSubmissionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores a new row. created_at never goes backwards relative to the
// newest existing row, even if the wall clock does.
func (r *SQLiteSubmissionRepository) Insert(ctx context.Context, in *model.SubmissionInput) (*model.ContactSubmission, error) {
	s := &model.ContactSubmission{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
	}
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contact_submissions (first_name, last_name, email, subject, message, created_at)
		 VALUES (?, ?, ?, ?, ?, MAX(?, COALESCE((SELECT MAX(created_at) FROM contact_submissions), 0)))
		 RETURNING id, created_at`,
		in.FirstName, in.LastName, in.Email, in.Subject, in.Message, r.now().UTC().UnixNano(),
	).Scan(&s.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	return s, nil
}

// List returns matching submissions newest first. A zero Limit returns all of them.
func (r *SQLiteSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.ContactSubmission, int, error) {
	args := searchArgs(likePattern(opts.Query))

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM contact_submissions WHERE `+sqliteSearchClause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	query := `SELECT ` + sqliteSubmissionColumns + ` FROM contact_submissions
	          WHERE ` + sqliteSearchClause + `
	          ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*model.ContactSubmission
	for rows.Next() {
		s, err := scanSQLiteSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSubmission(row rowScanner) (*model.ContactSubmission, error) {
	var s model.ContactSubmission
	var createdAt int64
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Subject, &s.Message, &createdAt); err != nil {
		return nil, err
	}
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	return &s, nil
}

// FindByID returns a single submission or ErrNotFound.
func (r *SQLiteSubmissionRepository) FindByID(ctx context.Context, id int64) (*model.ContactSubmission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteSubmissionColumns+` FROM contact_submissions WHERE id = ?`, id)
	s, err := scanSQLiteSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission %d: %w", id, err)
	}
	return s, nil
}

// Delete removes the row and reports whether it existed.
func (r *SQLiteSubmissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete submission %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete submission %d: %w", id, err)
	}
	return n > 0, nil
}

// CountSince counts rows with created_at >= since.
func (r *SQLiteSubmissionRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var bound int64
	if !since.IsZero() {
		bound = since.UTC().UnixNano()
	}
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM contact_submissions WHERE created_at >= ?`, bound,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
