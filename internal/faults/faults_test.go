package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(AuthRequired, "no credential on file")
	if KindOf(err) != AuthRequired {
		t.Errorf("expected AuthRequired, got %v", KindOf(err))
	}

	// Kind survives further wrapping.
	wrapped := fmt.Errorf("tool call failed: %w", err)
	if KindOf(wrapped) != AuthRequired {
		t.Errorf("expected AuthRequired through fmt.Errorf, got %v", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != KindUnknown {
		t.Errorf("expected KindUnknown for a plain error")
	}
	if KindOf(nil) != KindUnknown {
		t.Errorf("expected KindUnknown for nil")
	}
}

func TestIs(t *testing.T) {
	err := New(UpstreamError, "HTTP 502")
	if !Is(err, UpstreamError) {
		t.Errorf("Is should match the fault's own kind")
	}
	if Is(err, AuthRequired) {
		t.Errorf("Is should not match a different kind")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(UpstreamError, cause, "token endpoint unreachable")

	if !errors.Is(err, cause) {
		t.Errorf("wrapped fault should unwrap to its cause")
	}
	if KindOf(err) != UpstreamError {
		t.Errorf("expected UpstreamError, got %v", KindOf(err))
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(InvalidArgument, "symbol cannot be empty")
	want := "INVALID_ARGUMENT: symbol cannot be empty"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	cause := errors.New("boom")
	err = Wrap(WriteError, cause, "replace credential file")
	want = "WRITE_ERROR: replace credential file: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		AuthRequired:    "AUTH_REQUIRED",
		AuthRejected:    "AUTH_REJECTED",
		AuthTimeout:     "AUTH_TIMEOUT",
		StateMismatch:   "STATE_MISMATCH",
		InvalidArgument: "INVALID_ARGUMENT",
		WriteError:      "WRITE_ERROR",
		UpstreamError:   "UPSTREAM_ERROR",
		KindUnknown:     "UNKNOWN",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}
