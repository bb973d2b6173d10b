package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker compares login attempts against the admin credential.
// A bcrypt hash takes precedence over a plaintext password.
type PasswordChecker struct {
	hash  []byte
	plain []byte
}

// NewPasswordChecker returns a checker for the configured credential. Both
// may be empty, in which case every attempt is rejected.
func NewPasswordChecker(plain, hash string) (*PasswordChecker, error) {
	c := &PasswordChecker{}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		c.hash = []byte(hash)
		return c, nil
	}
	if plain != "" {
		sum := sha256.Sum256([]byte(plain))
		c.plain = sum[:]
	}
	return c, nil
}

// Configured reports whether any admin credential is set.
func (c *PasswordChecker) Configured() bool {
	return len(c.hash) > 0 || len(c.plain) > 0
}

// Check reports whether candidate matches the admin credential.
func (c *PasswordChecker) Check(candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(c.hash) > 0 {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(candidate)) == nil
	}
	if len(c.plain) == 0 {
		return false
	}
	sum := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(sum[:], c.plain) == 1
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
