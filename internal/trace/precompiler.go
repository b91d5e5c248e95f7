package trace

import (
	"context"
	"sync"

	"aheui/internal/cursor"
	"aheui/internal/grid"

	"golang.org/x/sync/errgroup"
)

// Precompiler memoizes entry-point discovery and trace construction over
// one grid. A cursor address reached repeatedly during a run (the body of
// a loop, typically) resolves to the same cached Trace after its first
// discovery instead of being re-walked from scratch.
type Precompiler struct {
	grid *grid.Grid

	mu sync.Mutex
	// entries and dead are keyed by the full incoming cursor (address AND
	// step), not address alone: the same cell reached while stepping right
	// and while stepping up are different entry points (§9's "address plus
	// direction-or-None" identity) whenever that cell's own movement is
	// direction-preserving (None/Mirror*), and even the Nop-skip walk that
	// precedes entry-point discovery can take a different path — or loop
	// forever in one direction but not another — depending on the step it
	// started with. cursor.Cursor is a plain comparable struct, so it works
	// directly as a map key.
	entries map[cursor.Cursor]EntryPoint
	traces  map[entryKey]*Trace
	dead    map[cursor.Cursor]bool // (address, step) pairs proven to sit on an infinite Nop loop
}

// New returns a Precompiler over g with empty caches.
func New(g *grid.Grid) *Precompiler {
	return &Precompiler{
		grid:    g,
		entries: make(map[cursor.Cursor]EntryPoint),
		traces:  make(map[entryKey]*Trace),
		dead:    make(map[cursor.Cursor]bool),
	}
}

// EntryFor resolves the entry point reachable from c, skipping over any
// Nop cells, using and populating the cache. ok is false if c sits on an
// infinite loop of nothing but Nop cells.
func (p *Precompiler) EntryFor(c cursor.Cursor) (EntryPoint, bool) {
	p.mu.Lock()
	if p.dead[c] {
		p.mu.Unlock()
		return EntryPoint{}, false
	}
	if entry, ok := p.entries[c]; ok {
		p.mu.Unlock()
		return entry, true
	}
	p.mu.Unlock()

	entry, ok := skipNops(p.grid, c)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !ok {
		p.dead[c] = true
		return EntryPoint{}, false
	}
	p.entries[c] = entry
	return entry, true
}

// TraceFor resolves the trace starting at entry, using and populating the
// cache. ok is false if entry's first instruction is not trace-eligible
// (the caller should execute it with the plain interpreter instead).
func (p *Precompiler) TraceFor(entry EntryPoint) (*Trace, bool) {
	key := entry.key()

	p.mu.Lock()
	if t, ok := p.traces[key]; ok {
		p.mu.Unlock()
		if t == nil {
			return nil, false
		}
		return t, true
	}
	p.mu.Unlock()

	t, ok := buildTrace(p.grid, entry)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !ok {
		p.traces[key] = nil
		return nil, false
	}
	p.traces[key] = t
	return t, true
}

// prewarmSteps are the four single-cell steps Prewarm seeds each cell with
// (up/down/left/right). The "skip one" Amount-2 variants are not seeded:
// EntryFor's cache is keyed by the full incoming cursor, amount included,
// so an arrival carrying one of them is not covered by these seeds and is
// resolved lazily on first encounter.
var prewarmSteps = []cursor.Step{
	{Axis: cursor.AxisRow, Amount: 1},
	{Axis: cursor.AxisRow, Amount: -1},
	{Axis: cursor.AxisColumn, Amount: 1},
	{Axis: cursor.AxisColumn, Amount: -1},
}

// Prewarm concurrently discovers and builds traces for every cell in the
// grid, treating each as a candidate entry point under every direction it
// could plausibly be entered from. It populates the same caches
// EntryFor/TraceFor consult lazily, so calling it is a pure optimization —
// skipping it only costs the first encounter of each (address, step) entry
// point its discovery work instead of a cache hit. Seeding all four
// directions (rather than a single fixed one) matters now that the cache is
// keyed by the full incoming cursor: a prewarm that only ever tried "came in
// stepping down" would warm just one of several entry points a cell can
// resolve to and leave the rest to be discovered lazily anyway.
func (p *Precompiler) Prewarm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for row := 0; row < p.grid.Height(); row++ {
		for col := 0; col < p.grid.RowLen(row); col++ {
			for _, step := range prewarmSteps {
				seed := cursor.Cursor{
					Address: cursor.Address{Row: int32(row), Col: int32(col)},
					Step:    step,
				}
				g.Go(func() error {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
					if entry, ok := p.EntryFor(seed); ok {
						p.TraceFor(entry)
					}
					return nil
				})
			}
		}
	}

	return g.Wait()
}
