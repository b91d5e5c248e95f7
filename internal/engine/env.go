// Package engine runs a decoded grid: it owns the cursor, the container
// family, and the program's input/output, and dispatches one instruction
// at a time the way the reference VM's Env/Engine pair does.
package engine

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"aheui/internal/container"
	"aheui/internal/cursor"
	"aheui/internal/diag"
	"aheui/internal/grid"
)

// Env is the mutable state a program executes against: where the cursor
// is, what each container holds, and where its input/output go.
type Env struct {
	Cursor     cursor.Cursor
	Containers *container.Family
	Grid       *grid.Grid

	input  *bufio.Reader
	Output io.Writer
}

// NewEnv builds a fresh environment over g, reading from input and
// writing to output, with the cursor and containers in their start state.
func NewEnv(g *grid.Grid, input io.Reader, output io.Writer) *Env {
	return &Env{
		Cursor:     cursor.New(),
		Containers: container.NewFamily(),
		Grid:       g,
		input:      bufio.NewReader(input),
		Output:     output,
	}
}

// ReadChar decodes one UTF-8 code point from input, byte by byte, exactly
// as a reader would consume the running program's stdin: it never reads
// past the first complete (or definitively invalid) encoding.
func (e *Env) ReadChar() (int32, error) {
	var buf [4]byte
	for i := 1; i <= 4; i++ {
		b, err := e.input.ReadByte()
		if err != nil {
			return 0, diag.Wrap(err, diag.IO, "failed to read a character from input")
		}
		buf[i-1] = b
		if utf8.FullRune(buf[:i]) {
			r, size := utf8.DecodeRune(buf[:i])
			if r == utf8.RuneError && size <= 1 {
				return 0, diag.New(diag.IO, "invalid UTF-8 byte sequence on input")
			}
			return int32(r), nil
		}
	}
	return 0, diag.New(diag.IO, "invalid UTF-8 byte sequence on input")
}

// ReadInt reads one line from input and parses it as a base-10 integer,
// trimming surrounding whitespace the way a line-oriented prompt would.
func (e *Env) ReadInt() (int32, error) {
	line, err := e.input.ReadString('\n')
	if err != nil && line == "" {
		return 0, diag.Wrap(err, diag.IO, "failed to read an integer from input")
	}
	trimmed := strings.TrimSpace(line)
	v, perr := strconv.ParseInt(trimmed, 10, 32)
	if perr != nil {
		return 0, diag.Wrap(perr, diag.IO, fmt.Sprintf("%q is not a valid integer", trimmed))
	}
	return int32(v), nil
}

// WriteChar writes v to output as the single Unicode scalar value it
// names, rejecting surrogate code points and anything outside the valid
// range rather than writing the Unicode replacement character silently.
func (e *Env) WriteChar(v int32) error {
	if v < 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
		return diag.Newf(diag.Runtime, "%d is not a valid Unicode scalar value", v)
	}
	if _, err := fmt.Fprintf(e.Output, "%c", rune(v)); err != nil {
		return diag.Wrap(err, diag.IO, "failed to write output")
	}
	return nil
}

// WriteInt writes v to output in decimal.
func (e *Env) WriteInt(v int32) error {
	if _, err := fmt.Fprintf(e.Output, "%d", v); err != nil {
		return diag.Wrap(err, diag.IO, "failed to write output")
	}
	return nil
}
