package trace

import (
	"errors"

	"aheui/internal/container"
	"aheui/internal/cursor"
	"aheui/internal/diag"
	"aheui/internal/grid"
	"aheui/internal/inst"
)

// opKind tags which shape of linear operation a TraceOp represents.
type opKind int

const (
	opBinary opKind = iota
	opPop
	opPush
	opDup
	opSwap
)

// binaryKind is the arithmetic/comparison half of a Binary TraceOp.
type binaryKind int

const (
	binAdd binaryKind = iota
	binSub
	binMul
	binDiv
	binMod
	binCompare
)

var errDivByZero = errors.New("trace: division by zero")
var errModByZero = errors.New("trace: modulo by zero")

// apply computes b <op> a — the same operand order the interpreter uses
// (a is the value popped first, off the top; b is the one beneath it).
func (k binaryKind) apply(a, b int32) (int32, error) {
	switch k {
	case binAdd:
		return b + a, nil
	case binSub:
		return b - a, nil
	case binMul:
		return b * a, nil
	case binDiv:
		if a == 0 {
			return 0, errDivByZero
		}
		return b / a, nil
	case binMod:
		if a == 0 {
			return 0, errModByZero
		}
		return b % a, nil
	case binCompare:
		if a <= b {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, nil
	}
}

// TraceOp is one instruction in a flattened trace — the subset of
// operations that can never fail once a depth guard has proven the
// selected container holds enough values (see Trace.StackHeight).
type TraceOp struct {
	Kind      opKind
	Bin       binaryKind
	PushValue int32
}

// linearOpOf reports the TraceOp form of op, or ok=false if op falls
// outside the trace-eligible set (Select, Move, Cond, Halt, the I/O ops,
// and Nop, which is handled separately by the caller).
func linearOpOf(op inst.Op, operand int32) (TraceOp, bool) {
	switch op {
	case inst.OpAdd:
		return TraceOp{Kind: opBinary, Bin: binAdd}, true
	case inst.OpSub:
		return TraceOp{Kind: opBinary, Bin: binSub}, true
	case inst.OpMul:
		return TraceOp{Kind: opBinary, Bin: binMul}, true
	case inst.OpDiv:
		return TraceOp{Kind: opBinary, Bin: binDiv}, true
	case inst.OpMod:
		return TraceOp{Kind: opBinary, Bin: binMod}, true
	case inst.OpCompare:
		return TraceOp{Kind: opBinary, Bin: binCompare}, true
	case inst.OpPop:
		return TraceOp{Kind: opPop}, true
	case inst.OpPush:
		return TraceOp{Kind: opPush, PushValue: operand}, true
	case inst.OpDup:
		return TraceOp{Kind: opDup}, true
	case inst.OpSwap:
		return TraceOp{Kind: opSwap}, true
	default:
		return TraceOp{}, false
	}
}

// Trace is a straight-line run of trace-eligible operations starting at
// Entry. StackHeight is the number of values that must already sit
// beneath the top of the selected container before Run starts — the
// deepest the trace ever reaches past its own pushes, computed the same
// way the reference precompiler's virtual depth accounting does. Once
// that much real height is confirmed, every op in the trace is
// guaranteed to succeed (arithmetic division/modulo by zero excepted,
// which is fatal rather than reversible either way).
type Trace struct {
	Entry       EntryPoint
	Ops         []TraceOp
	StackHeight int
	End         cursor.Cursor
}

// ErrInsufficientHeight is returned by Run when the live container does
// not hold enough values for the trace to execute safely; the caller
// should fall back to interpreting the same instructions one at a time.
var ErrInsufficientHeight = errors.New("trace: selected container does not hold enough values for this trace")

// buildTrace walks forward from entry over the grid, accumulating
// trace-eligible operations and passing transparently through Nop cells
// (a Nop still carries a movement), until it hits a non-eligible
// operation or revisits an address already seen in this trace (a pure
// arithmetic loop — the reference macro, running once at compile time on
// a terminating analysis, never needed this guard; this implementation
// runs per grid load, so an adversarial or buggy straight-line cycle must
// not spin forever here).
func buildTrace(g *grid.Grid, entry EntryPoint) (*Trace, bool) {
	step := cursor.Step{Axis: cursor.AxisColumn, Amount: 0}
	if entry.Step != nil {
		step = *entry.Step
	}
	c := cursor.Cursor{Address: entry.Address, Step: step}

	depth, minDepth := 0, 0
	var ops []TraceOp
	visited := map[cursor.Address]bool{}

	for {
		if visited[c.Address] {
			break
		}
		visited[c.Address] = true

		cell, ok := g.CellAt(int(c.Address.Row), int(c.Address.Col))
		if !ok {
			break
		}

		if cell.Op == inst.OpNop {
			c.Advance(g, cell.Movement, false)
			continue
		}

		op, eligible := linearOpOf(cell.Op, cell.Operand)
		if !eligible {
			break
		}

		switch op.Kind {
		case opBinary:
			depth -= 2
			minDepth = min(minDepth, depth)
			depth += 1
		case opPop:
			depth -= 1
			minDepth = min(minDepth, depth)
		case opPush:
			depth += 1
		case opDup:
			depth -= 1
			minDepth = min(minDepth, depth)
			depth += 2
		case opSwap:
			depth -= 2
			minDepth = min(minDepth, depth)
			depth += 2
		}

		ops = append(ops, op)
		c.Advance(g, cell.Movement, false)
	}

	if len(ops) == 0 {
		return nil, false
	}
	return &Trace{Entry: entry, Ops: ops, StackHeight: -minDepth, End: c}, true
}

// Run executes every op in t against storage in one pass. It returns
// ErrInsufficientHeight without mutating storage at all if the guard
// fails, and a fatal *diag.Error for a division/modulo by zero, matching
// the interpreter's treatment of the same condition.
func (t *Trace) Run(storage container.Storage) error {
	if storage.Len() < t.StackHeight {
		return ErrInsufficientHeight
	}

	for _, op := range t.Ops {
		switch op.Kind {
		case opBinary:
			var applyErr error
			ok := storage.Fold(func(a, b int32) int32 {
				v, err := op.Bin.apply(a, b)
				if err != nil {
					applyErr = err
					return b
				}
				return v
			})
			if applyErr != nil {
				return diag.Wrap(applyErr, diag.Runtime, applyErr.Error()).
					WithLocation(int(t.Entry.Address.Row), int(t.Entry.Address.Col))
			}
			if !ok {
				return invariantViolated(t)
			}
		case opPop:
			if _, ok := storage.TryPop(); !ok {
				return invariantViolated(t)
			}
		case opPush:
			storage.Push(op.PushValue)
		case opDup:
			if !storage.Dup() {
				return invariantViolated(t)
			}
		case opSwap:
			if !storage.Swap() {
				return invariantViolated(t)
			}
		}
	}
	return nil
}

func invariantViolated(t *Trace) error {
	return diag.New(diag.Runtime, "trace stack-height guard did not hold during execution").
		WithLocation(int(t.Entry.Address.Row), int(t.Entry.Address.Col))
}
