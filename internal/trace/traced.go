package trace

import (
	"aheui/internal/engine"
)

// Traced is the fused execution engine: it discovers the entry point the
// cursor currently sits on, resolves (and caches) the straight-line trace
// starting there, and — once the selected container is proven deep enough
// — executes every op in that trace in one Step call instead of one per
// grid cell. Any cell the tracer can't fuse (Select, Move, Cond, Halt, the
// I/O ops, an ineligible first instruction, or a container that is not yet
// deep enough) falls back to Interpreter for that single step, so Traced
// is observably identical to Interpreter — only its call count to Step
// differs.
type Traced struct {
	pre *Precompiler

	// FusedSteps and FallbackSteps count how Step calls were actually
	// served, for the CLI's coverage report (§10.6); they're plain
	// counters, not atomics, since one Traced is only ever driven by one
	// goroutine's engine.Run loop at a time.
	FusedSteps    int64
	FallbackSteps int64
}

// NewTraced wraps pre as an engine.Engine.
func NewTraced(pre *Precompiler) *Traced {
	return &Traced{pre: pre}
}

func (t *Traced) Step(env *engine.Env) (int32, bool, error) {
	entry, ok := t.pre.EntryFor(env.Cursor)
	if !ok {
		// The cursor sits on a cycle of nothing but Nop cells; there is no
		// non-Nop instruction to fuse, so let the plain interpreter spin
		// through it one cell at a time exactly as it would on its own.
		t.FallbackSteps++
		return engine.Interpreter{}.Step(env)
	}

	tr, ok := t.pre.TraceFor(entry)
	if !ok {
		t.FallbackSteps++
		return engine.Interpreter{}.Step(env)
	}

	storage, err := env.Containers.Selected()
	if err != nil {
		t.FallbackSteps++
		return engine.Interpreter{}.Step(env)
	}

	if runErr := tr.Run(storage); runErr != nil {
		if runErr == ErrInsufficientHeight {
			t.FallbackSteps++
			return engine.Interpreter{}.Step(env)
		}
		return 0, false, runErr
	}

	t.FusedSteps++
	env.Cursor = tr.End
	return 0, false, nil
}
