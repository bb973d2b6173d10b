package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/portfolio/backend/internal/metrics"
	"github.com/portfolio/backend/pkg/auth"
)

// AdminAuth is the admin login surface used by the HTTP layer.
type AdminAuth interface {
	Login(ctx context.Context, password string) (string, *auth.Session, error)
	Validate(ctx context.Context, token string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

var _ AdminAuth = (*SessionService)(nil)

// SessionService manages admin sessions: signed cookie tokens plus a
// revocation list for logout. Validate implements auth.SessionValidator.
type SessionService struct {
	passwords   *auth.PasswordChecker
	secret      []byte
	ttl         time.Duration
	revocations auth.RevocationList
	now         func() time.Time
}

// NewSessionService creates a SessionService. A zero ttl uses auth.SessionDuration.
func NewSessionService(passwords *auth.PasswordChecker, secret []byte, ttl time.Duration, revocations auth.RevocationList) *SessionService {
	if ttl <= 0 {
		ttl = auth.SessionDuration
	}
	if revocations == nil {
		revocations = auth.NewMemoryRevocationList()
	}
	return &SessionService{
		passwords:   passwords,
		secret:      secret,
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// TTL is the lifetime of newly issued sessions.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Login checks password and issues a session token.
func (s *SessionService) Login(ctx context.Context, password string) (string, *auth.Session, error) {
	if !s.passwords.Check(password) {
		metrics.AdminLogins.WithLabelValues("failure").Inc()
		if !s.passwords.Configured() {
			slog.Warn("admin login attempted but no admin password is configured")
		} else {
			slog.Warn("admin login failed")
		}
		return "", nil, &Error{Kind: KindAuth, Op: "login", Err: ErrInvalidPassword}
	}
	token, sess, err := auth.CreateSessionToken(s.secret, s.now(), s.ttl)
	if err != nil {
		return "", nil, err
	}
	metrics.AdminLogins.WithLabelValues("success").Inc()
	slog.Info("admin login", "session_id", sess.TokenID, "expires_at", sess.ExpiresAt)
	return token, sess, nil
}

// Validate returns the session for a live token. A revocation lookup failure
// rejects the token.
func (s *SessionService) Validate(ctx context.Context, token string) (*auth.Session, error) {
	sess, err := auth.VerifySessionToken(token, s.secret, s.now())
	if err != nil {
		return nil, &Error{Kind: KindAuth, Op: "validate session", Err: err}
	}
	revoked, err := s.revocations.IsRevoked(ctx, sess.TokenID)
	if err != nil {
		slog.Error("revocation lookup failed", "error", err, "session_id", sess.TokenID)
		return nil, &Error{Kind: KindAuth, Op: "validate session", Err: err}
	}
	if revoked {
		return nil, &Error{Kind: KindAuth, Op: "validate session", Err: auth.ErrInvalidSession}
	}
	return sess, nil
}

// Logout revokes token until it would have expired. Tokens that are already
// invalid need no revocation.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	sess, err := auth.VerifySessionToken(token, s.secret, s.now())
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return err
	}
	slog.Info("admin logout", "session_id", sess.TokenID)
	return nil
}
