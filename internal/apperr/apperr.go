package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindConflict
	KindAlreadyExists
	KindBadRequest
	KindUnavailable
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.kindString(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.kindString(), e.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) kindString() string {
	switch e.Kind {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindBadRequest:
		return "BadRequest"
	case KindUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}

func NotFound(msg string) error      { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) error     { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) error      { return &Error{Kind: KindConflict, Message: msg} }
func AlreadyExists(msg string) error { return &Error{Kind: KindAlreadyExists, Message: msg} }
func BadRequest(msg string) error    { return &Error{Kind: KindBadRequest, Message: msg} }

// Unavailable wraps an underlying store error. The cause is logged
// server-side and never surfaced to the caller.
func Unavailable(msg string, err error) error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnavailable for errors that
// don't carry a taxonomy kind.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}

func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
