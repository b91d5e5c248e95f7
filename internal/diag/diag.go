// Package diag implements the structured error type used across this
// module for anything a human, not just a caller, needs to read:
// configuration mistakes, unsupported-container faults, and I/O failures
// during a run. It carries source position and an optional execution
// trail, the way a compiler error does, rather than a bare string.
package diag

import (
	"fmt"
	"strings"

	"github.com/kr/text"
	"github.com/pkg/errors"
)

// Kind classifies an Error the way a caller (CLI exit code, server
// response) needs to branch on it.
type Kind string

const (
	Runtime Kind = "RuntimeError"
	Config  Kind = "ConfigError"
	IO      Kind = "IOError"
)

// Location is a position in the source grid an Error is anchored to.
type Location struct {
	Row int
	Col int
}

// Frame is one step of the execution trail leading up to an Error,
// recorded so a trace-precompiled fault and an interpreted one produce an
// equally readable diagnostic.
type Frame struct {
	Description string
	Location    Location
}

// Error is this module's error type. Message is a one-line human
// description; Location and Source, when set, let Error render a caret
// pointing at the offending cell the way a parser error would.
type Error struct {
	Kind     Kind
	Message  string
	Location *Location
	Source   string
	Frames   []Frame
	cause    error
}

// New creates an Error with no location or cause attached yet.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches cause as the underlying reason for a new Error, stamping
// a stack trace onto it via pkg/errors so Cause()/Unwrap() chains survive.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// WithLocation anchors the error to a grid cell.
func (e *Error) WithLocation(row, col int) *Error {
	loc := Location{Row: row, Col: col}
	e.Location = &loc
	return e
}

// WithSource attaches the source line the location falls on, so Error can
// render a caret under the offending column.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// AddFrame appends one step to the execution trail, outermost call last.
func (e *Error) AddFrame(description string, row, col int) *Error {
	e.Frames = append(e.Frames, Frame{Description: description, Location: Location{Row: row, Col: col}})
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", e.Kind, e.Message)

	if e.Location != nil {
		fmt.Fprintf(&sb, "  at row %d, col %d\n", e.Location.Row, e.Location.Col)
		if e.Source != "" {
			runes := []rune(e.Source)
			fmt.Fprintf(&sb, "\n  %s\n", e.Source)
			caret := strings.Repeat(" ", 2)
			if e.Location.Col >= 0 && e.Location.Col < len(runes) {
				caret += strings.Repeat(" ", e.Location.Col)
			}
			sb.WriteString(caret + "^\n")
		}
	}

	if len(e.Frames) > 0 {
		sb.WriteString("\ntrace:\n")
		for _, f := range e.Frames {
			line := fmt.Sprintf("at %s (row %d, col %d)\n", f.Description, f.Location.Row, f.Location.Col)
			sb.WriteString(text.Indent(line, "  "))
		}
	}

	if e.cause != nil {
		sb.WriteString("\ncaused by: ")
		sb.WriteString(e.cause.Error())
	}

	return sb.String()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Cause exposes the wrapped cause for pkg/errors-style callers.
func (e *Error) Cause() error { return e.cause }
