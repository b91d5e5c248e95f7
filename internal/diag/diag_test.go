package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestNewFormatsKindAndMessage(t *testing.T) {
	err := New(Runtime, "channel is not supported")
	got := err.Error()
	if !strings.HasPrefix(got, "RuntimeError: channel is not supported") {
		t.Fatalf("Error() = %q, want it to start with the kind and message", got)
	}
}

func TestWithLocationRendersPosition(t *testing.T) {
	err := New(Runtime, "stack underflow").WithLocation(3, 7)
	got := err.Error()
	if !strings.Contains(got, "row 3, col 7") {
		t.Fatalf("Error() = %q, want it to mention row 3, col 7", got)
	}
}

func TestWithSourceRendersCaret(t *testing.T) {
	err := New(Runtime, "oops").WithLocation(0, 2).WithSource("바방망희")
	got := err.Error()
	if !strings.Contains(got, "바방망희") {
		t.Fatalf("Error() = %q, want it to include the source line", got)
	}
	if !strings.Contains(got, "^") {
		t.Fatalf("Error() = %q, want a caret marker", got)
	}
}

func TestAddFrameAppendsTrail(t *testing.T) {
	err := New(Runtime, "fused trace failed").
		AddFrame("entry@(0,0)", 0, 0).
		AddFrame("entry@(2,1)", 2, 1)
	got := err.Error()
	if !strings.Contains(got, "entry@(0,0)") || !strings.Contains(got, "entry@(2,1)") {
		t.Fatalf("Error() = %q, want both trace frames", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("unexpected end of input")
	err := Wrap(cause, IO, "failed to read an integer")
	if !strings.Contains(err.Error(), "unexpected end of input") {
		t.Fatalf("Error() = %q, want the cause's message", err.Error())
	}
	if !errors.Is(err, cause) && err.Cause() == nil {
		t.Fatalf("Cause() should expose the wrapped error")
	}
}
