package service

import (
	"errors"
	"fmt"

	"github.com/portfolio/backend/internal/repository"
)

// ErrorKind classifies failures surfaced by the services.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindPersistence
	KindNotification
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindNotification:
		return "notification"
	case KindAuth:
		return "auth"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a classified service failure. Err is never shown to clients.
type Error struct {
	Kind  ErrorKind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// ErrNotFound is returned when a submission id does not exist.
var ErrNotFound = repository.ErrNotFound

// ErrInvalidPassword is wrapped by the KindAuth error returned from a failed login.
var ErrInvalidPassword = errors.New("invalid password")
