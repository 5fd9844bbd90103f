// Package service holds the movie, score and user use cases. Each operation
// returns an *Error whose Kind tells the transport layer how to respond.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrUsernameNotFound   = errors.New("username not found")
	ErrBadCredentials     = errors.New("bad credentials")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 5")
)

// Error is the failure returned by every service operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind of err. Errors not produced by this package are
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
