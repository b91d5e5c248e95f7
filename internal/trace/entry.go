// Package trace implements the tracing precompiler: discovery of an
// entry point's canonical identity, construction of a straight-line
// "happy path" trace of arithmetic/stack operations starting there, and
// fused execution of that trace against a live container in one shot.
//
// This is a from-scratch runtime analysis, not a literal port: the
// reference toolchain's precompiler emits source code at the embedding
// crate's compile time, which Go has no equivalent facility for (see the
// design notes' entry on the precompiler emission target). The entry
// discovery and virtual stack-depth accounting it performs carry over,
// adjusted for an off-by-one in the draft that anchored an entry point
// one cell past the instruction it was meant to name (see design notes).
package trace

import (
	"aheui/internal/cursor"
	"aheui/internal/grid"
	"aheui/internal/inst"
)

// EntryPoint is a trace's canonical identity: the address it starts at,
// plus — only for movements that preserve the incoming step rather than
// overriding it (None, MirrorV, MirrorH, Mirror) — the step the cursor
// carried on arrival. Two arrivals at the same address with the same step
// (or both landing on a direction-overriding movement) are the same entry
// point and share a cached trace.
type EntryPoint struct {
	Address cursor.Address
	Step    *cursor.Step
}

// newEntryPoint builds the identity for a cursor sitting on a cell whose
// operation's movement is movement, before that movement has been applied.
func newEntryPoint(c cursor.Cursor, movement inst.Movement) EntryPoint {
	if movement.DirectionPreserving() {
		step := c.Step
		return EntryPoint{Address: c.Address, Step: &step}
	}
	return EntryPoint{Address: c.Address}
}

// entryKey makes EntryPoint usable as a map key despite its pointer field.
type entryKey struct {
	cursor.Address
	hasStep bool
	step    cursor.Step
}

func (e EntryPoint) key() entryKey {
	if e.Step == nil {
		return entryKey{Address: e.Address}
	}
	return entryKey{Address: e.Address, hasStep: true, step: *e.Step}
}

// skipNops walks forward from start, consuming Nop cells (a Nop syllable
// still carries a movement — its jungseong is independent of its
// no-op choseong — so each one is advanced through individually, never
// reversed, since Nop can't fail) until it reaches a non-Nop cell. It
// reports ok=false if the walk revisits an address already seen, meaning
// start sits on an infinite loop of nothing but Nop cells.
func skipNops(g *grid.Grid, start cursor.Cursor) (EntryPoint, bool) {
	c := start
	visited := map[cursor.Address]bool{}
	for {
		if visited[c.Address] {
			return EntryPoint{}, false
		}
		visited[c.Address] = true

		cell, ok := g.CellAt(int(c.Address.Row), int(c.Address.Col))
		if !ok {
			return EntryPoint{}, false
		}

		if cell.Op != inst.OpNop {
			return newEntryPoint(c, cell.Movement), true
		}

		c.Advance(g, cell.Movement, false)
	}
}
