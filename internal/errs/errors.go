package errs

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can decide how to surface it.
type Kind string

const (
	KindTransport      Kind = "transport"
	KindDecode         Kind = "decode"
	KindAuthentication Kind = "authentication"
	KindUnauthorized   Kind = "unauthorized"
	KindValidation     Kind = "validation"
	KindStale          Kind = "stale"
	KindNotFound       Kind = "not_found"
)

// Error is the console's application error.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches a kind and operation to err, recording a stack trace.
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// Is reports whether any error in err's chain is an *Error of kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// Status returns the upstream HTTP status carried by err, or 0.
func Status(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

var (
	ErrInvalidCredentials = New(KindAuthentication, "login", "Invalid email or password")
	ErrNoSession          = New(KindUnauthorized, "guard", "no session token")
	ErrDialogClosed       = New(KindStale, "form", "dialog is no longer open")
)
