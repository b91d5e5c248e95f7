// Package embed exposes the two entry points a host embeds a program
// through: Decode turns source text into a Grid, and Execute runs a Grid
// against a chosen input source and output disposition. The CLI's run
// command goes through both calls; its debug and stats commands use Decode
// and then drive internal/engine directly, as the live server and the
// debugger also do.
package embed

import (
	"bytes"
	"strings"

	"aheui/internal/engine"
	"aheui/internal/grid"
	"aheui/internal/trace"
)

// Decode parses source text into a Grid. Decoding never fails: any code
// point outside the Hangul syllable block decodes to a no-op cell.
func Decode(source string) *grid.Grid {
	return grid.Parse(strings.Split(source, "\n"))
}

// Input selects where ReadChar/ReadInt draw from.
type Input struct {
	// Text is read byte-for-byte if non-nil. A nil Text reads no input at
	// all (every ReadChar/ReadInt call fails as if at end-of-stream).
	Text *string
}

// StringInput returns an Input that reads from s.
func StringInput(s string) Input { return Input{Text: &s} }

// Output selects where WriteChar/WriteInt bytes go and what Execute
// additionally returns.
type Output struct {
	// Capture, if true, accumulates every written byte and returns it in
	// Result.Captured in addition to whatever Sink receives.
	Capture bool
	// Sink, if non-nil, receives every written byte as it's produced —
	// the disposition a host uses to stream output live instead of
	// waiting for the run to finish.
	Sink interface {
		Write(p []byte) (int, error)
	}
}

// Result is everything Execute reports about one run.
type Result struct {
	ExitCode int32
	Captured string // populated only if the Output requested Capture
}

// Precompile selects whether Execute drives the fused tracing engine
// (the default, matching production use) or the one-instruction-at-a-time
// interpreter (useful for parity testing against the precompiler).
type Precompile bool

const (
	UseTrace       Precompile = true
	InterpretOnly  Precompile = false
)

// Execute runs g to completion against input/output, reporting its exit
// code and (if requested) its captured output.
func Execute(g *grid.Grid, input Input, output Output, mode Precompile) (Result, error) {
	var reader *strings.Reader
	if input.Text != nil {
		reader = strings.NewReader(*input.Text)
	} else {
		reader = strings.NewReader("")
	}

	var capture bytes.Buffer
	writers := make([]writerFunc, 0, 2)
	if output.Capture {
		writers = append(writers, capture.Write)
	}
	if output.Sink != nil {
		writers = append(writers, output.Sink.Write)
	}

	env := engine.NewEnv(g, reader, multiWriter(writers))

	var eng engine.Engine = engine.Interpreter{}
	if mode == UseTrace {
		eng = trace.NewTraced(trace.New(g))
	}

	code, err := engine.Run(env, eng)
	result := Result{ExitCode: code}
	if output.Capture {
		result.Captured = capture.String()
	}
	return result, err
}

type writerFunc func(p []byte) (int, error)

// multiWriter fans out writes to every writer function in fns, stopping
// at the first error.
func multiWriter(fns []writerFunc) writerFuncWriter {
	return writerFuncWriter(fns)
}

type writerFuncWriter []writerFunc

func (w writerFuncWriter) Write(p []byte) (int, error) {
	for _, fn := range w {
		if _, err := fn(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
