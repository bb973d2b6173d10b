package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/metrics"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/validation"
)

const (
	defaultStoreTimeout  = 5 * time.Second
	defaultNotifyTimeout = 10 * time.Second
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo      repository.SubmissionRepository
	validator *validation.Validator
	notifier  notify.Notifier
	composer  *notify.Composer
	cfg       ContactConfig
	now       func() time.Time
}

// NewContactService wires the pipeline. Zero timeouts fall back to 5s and 10s.
func NewContactService(repo repository.SubmissionRepository, notifier notify.Notifier, composer *notify.Composer, cfg ContactConfig) ContactService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyDegraded
	}
	if notifier == nil {
		notifier = notify.Disabled{}
	}
	return &contactServiceImpl{
		repo:      repo,
		validator: validation.New(),
		notifier:  notifier,
		composer:  composer,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *contactServiceImpl) Submit(ctx context.Context, raw map[string]string) *SubmitResult {
	in, fieldErrs := s.validator.Parse(raw)
	if fieldErrs != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return s.failure(&Error{Kind: KindValidation, Op: "submit", Err: fieldErrs}, fieldErrs)
	}

	stored, err := s.store(ctx, &in)
	if err != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomePersistFailed).Inc()
		slog.Error("failed to store submission", "error", err, "email", logging.RedactEmail(in.Email))
		return s.failure(&Error{Kind: KindPersistence, Op: "submit", Err: err}, nil)
	}
	log := slog.With("submission_id", stored.ID)
	log.Info("submission stored", "email", logging.RedactEmail(stored.Email))

	// The row is committed; the email goes out even if the client has gone away.
	err = s.notifyOwner(context.WithoutCancel(ctx), stored)
	switch {
	case err == nil:
		metrics.Submissions.WithLabelValues(metrics.OutcomeAccepted).Inc()
		return &SubmitResult{Success: true, Message: MsgSuccess, SubmissionID: stored.ID}
	case errors.Is(err, notify.ErrDisabled):
		metrics.Submissions.WithLabelValues(metrics.OutcomeNotifySkipped).Inc()
		log.Warn("notification skipped: no email provider configured")
		return &SubmitResult{Success: true, Message: MsgSuccess, SubmissionID: stored.ID}
	}

	metrics.Submissions.WithLabelValues(metrics.OutcomeNotifyFailed).Inc()
	log.Error("failed to send notification", "error", err, "policy", string(s.cfg.Policy))
	res := s.failure(&Error{Kind: KindNotification, Op: "submit", Err: err}, nil)
	res.SubmissionID = stored.ID
	return res
}

func (s *contactServiceImpl) store(ctx context.Context, in *model.SubmissionInput) (*model.ContactSubmission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.repo.Insert(ctx, in)
}

func (s *contactServiceImpl) notifyOwner(ctx context.Context, stored *model.ContactSubmission) error {
	if _, disabled := s.notifier.(notify.Disabled); disabled || s.composer == nil {
		return notify.ErrDisabled
	}
	msg, err := s.composer.Compose(stored)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()
	start := s.now()
	receipt, err := s.notifier.Send(ctx, msg)
	metrics.NotifyDuration.WithLabelValues(s.cfg.Provider).Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	if receipt != nil {
		slog.Info("notification sent", "submission_id", stored.ID, "provider", receipt.Provider, "message_id", receipt.ID)
	}
	return nil
}

// failure maps a classified error onto what the submitter sees.
func (s *contactServiceImpl) failure(e *Error, fieldErrs validation.FieldErrors) *SubmitResult {
	res := &SubmitResult{Err: e}
	switch e.Kind {
	case KindValidation:
		res.Message = MsgInvalid
		res.Errors = fieldErrs
	case KindPersistence:
		res.Message = fmt.Sprintf(msgGenericTemplate, s.cfg.FallbackEmail)
	case KindNotification:
		switch s.cfg.Policy {
		case PolicyIgnore:
			res.Success = true
			res.Message = MsgSuccess
		case PolicyFail:
			res.Message = fmt.Sprintf(msgNotifyTemplate, s.cfg.FallbackEmail)
		default:
			res.Success = true
			res.Message = MsgDegraded
		}
	case KindAuth:
		res.Message = fmt.Sprintf(msgGenericTemplate, s.cfg.FallbackEmail)
	}
	return res
}

func (s *contactServiceImpl) List(ctx context.Context, q ListQuery) (*model.SubmissionPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	opts := model.SubmissionListOptions{Query: strings.TrimSpace(q.Query), Limit: q.Limit}
	if q.Limit > 0 {
		opts.Offset = pageOffset(page, q.Limit)
	} else {
		page = 1
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	rows, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, &Error{Kind: KindPersistence, Op: "list", Err: err}
	}
	if rows == nil {
		rows = []*model.ContactSubmission{}
	}
	return &model.SubmissionPage{
		Submissions: rows,
		Total:       total,
		Page:        page,
		TotalPages:  totalPages(total, q.Limit),
	}, nil
}

// pageOffset returns the row offset of a 1-based page, saturating at
// math.MaxInt instead of overflowing.
func pageOffset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	if limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func (s *contactServiceImpl) Get(ctx context.Context, id int64) (*model.ContactSubmission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	sub, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &Error{Kind: KindPersistence, Op: "get", Err: err}
	}
	return sub, nil
}

func (s *contactServiceImpl) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, &Error{Kind: KindPersistence, Op: "delete", Err: err}
	}
	if removed {
		slog.Info("submission deleted", "submission_id", id)
	}
	return removed, nil
}

// Stats counts submissions since the start of today, the last 7 days and the
// start of the current month, in the server's local time.
func (s *contactServiceImpl) Stats(ctx context.Context) (*model.SubmissionStats, error) {
	now := s.now()
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var stats model.SubmissionStats
	for _, c := range []struct {
		since time.Time
		dst   *int
	}{
		{time.Time{}, &stats.Total},
		{startOfMonth, &stats.ThisMonth},
		{weekAgo, &stats.ThisWeek},
		{startOfDay, &stats.Today},
	} {
		n, err := s.repo.CountSince(ctx, c.since)
		if err != nil {
			return nil, &Error{Kind: KindPersistence, Op: "stats", Err: err}
		}
		*c.dst = n
	}
	return &stats, nil
}

var csvHeader = []string{"ID", "First Name", "Last Name", "Email", "Subject", "Message", "Created At"}

var newlineCollapser = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func (s *contactServiceImpl) Export(ctx context.Context, w io.Writer) error {
	page, err := s.List(ctx, ListQuery{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, sub := range page.Submissions {
		if err := cw.Write([]string{
			strconv.FormatInt(sub.ID, 10),
			sub.FirstName,
			sub.LastName,
			sub.Email,
			sub.Subject,
			newlineCollapser.Replace(sub.Message),
			sub.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
