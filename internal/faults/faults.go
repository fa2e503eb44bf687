package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind int

const (
	// KindUnknown is the zero value; no fault of this kind is ever built.
	KindUnknown Kind = iota
	// AuthRequired means no valid credential exists; the operator must run
	// the interactive authenticate command.
	AuthRequired
	// AuthRejected means the identity provider declined the code exchange.
	AuthRejected
	// AuthTimeout means the interactive flow was abandoned.
	AuthTimeout
	// StateMismatch means the redirect carried a state value we never
	// generated; the flow is aborted.
	StateMismatch
	// InvalidArgument means malformed tool input.
	InvalidArgument
	// WriteError means credential persistence failed.
	WriteError
	// UpstreamError means the remote API call failed.
	UpstreamError
)

func (k Kind) String() string {
	switch k {
	case AuthRequired:
		return "AUTH_REQUIRED"
	case AuthRejected:
		return "AUTH_REJECTED"
	case AuthTimeout:
		return "AUTH_TIMEOUT"
	case StateMismatch:
		return "STATE_MISMATCH"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case WriteError:
		return "WRITE_ERROR"
	case UpstreamError:
		return "UPSTREAM_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fault is a typed error carrying its Kind. It wraps an underlying cause
// when one exists.
type Fault struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error { return f.Err }

// New builds a fault with no underlying cause.
func New(kind Kind, format string, args ...any) error {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a fault around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is (or wraps) a fault of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf extracts the kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}
