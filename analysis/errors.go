package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the pipeline recovers from it.
type Kind int

const (
	// InputInvalid aborts the run.
	InputInvalid Kind = iota + 1
	// ExternalCallFailed is recovered by a stage-specific fallback.
	ExternalCallFailed
	// ParseFailed is treated like ExternalCallFailed.
	ParseFailed
	// ResourceUnavailable is recovered as an empty result (e.g. missing term database).
	ResourceUnavailable
)

func (k Kind) String() string {
	switch k {
	case InputInvalid:
		return "input_invalid"
	case ExternalCallFailed:
		return "external_call_failed"
	case ParseFailed:
		return "parse_failed"
	case ResourceUnavailable:
		return "resource_unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fatal reports whether a failure of this kind must abort the run.
func (k Kind) Fatal() bool { return k == InputInvalid }

var (
	ErrInputInvalid        = errors.New("input invalid")
	ErrExternalCallFailed  = errors.New("external call failed")
	ErrParseFailed         = errors.New("parse failed")
	ErrResourceUnavailable = errors.New("resource unavailable")
)

func (k Kind) sentinel() error {
	switch k {
	case InputInvalid:
		return ErrInputInvalid
	case ExternalCallFailed:
		return ErrExternalCallFailed
	case ParseFailed:
		return ErrParseFailed
	case ResourceUnavailable:
		return ErrResourceUnavailable
	}
	return nil
}

// Error is a classified failure. errors.Is matches it against the sentinel of its Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error from a format string.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the Kind of err, or ExternalCallFailed for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ExternalCallFailed
}
