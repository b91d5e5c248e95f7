// Package debugger drives the execution engine one instruction at a time
// under operator control: step, continue-to-breakpoint, and inspect the
// live cursor/container state. It never reaches into the engine's
// internals beyond the engine.Engine/engine.Env contract any other
// caller uses — a breakpoint is just a grid address the driving loop
// checks against after every Step.
package debugger

import (
	"fmt"

	"github.com/kr/pretty"

	"aheui/internal/cursor"
	"aheui/internal/engine"
)

// State is the debugger's run state.
type State int

const (
	Paused State = iota
	Running
	Halted
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Breakpoint pauses Continue whenever the cursor lands on Address.
type Breakpoint struct {
	ID       int
	Address  cursor.Address
	Enabled  bool
	HitCount int
}

// Debugger wraps one engine.Env/engine.Engine pair with breakpoint and
// single-step control.
type Debugger struct {
	env         *engine.Env
	eng         engine.Engine
	breakpoints map[int]*Breakpoint
	nextID      int
	state       State
	exitCode    int32
}

// New returns a debugger paused at env's current cursor, driving eng.
func New(env *engine.Env, eng engine.Engine) *Debugger {
	return &Debugger{
		env:         env,
		eng:         eng,
		breakpoints: make(map[int]*Breakpoint),
		nextID:      1,
		state:       Paused,
	}
}

// AddBreakpoint registers a new breakpoint at addr and returns its id.
func (d *Debugger) AddBreakpoint(addr cursor.Address) int {
	id := d.nextID
	d.nextID++
	d.breakpoints[id] = &Breakpoint{ID: id, Address: addr, Enabled: true}
	return id
}

// RemoveBreakpoint deletes the breakpoint named by id, reporting whether
// it existed.
func (d *Debugger) RemoveBreakpoint(id int) bool {
	if _, ok := d.breakpoints[id]; !ok {
		return false
	}
	delete(d.breakpoints, id)
	return true
}

// Breakpoints returns every registered breakpoint, in no particular order.
func (d *Debugger) Breakpoints() []*Breakpoint {
	list := make([]*Breakpoint, 0, len(d.breakpoints))
	for _, bp := range d.breakpoints {
		list = append(list, bp)
	}
	return list
}

// State reports whether the debugger is paused, running, or has halted.
func (d *Debugger) State() State { return d.state }

// ExitCode is valid once State is Halted.
func (d *Debugger) ExitCode() int32 { return d.exitCode }

// Step executes exactly one instruction and reports whether the program
// halted as a result. It does not itself stop for a breakpoint sitting on
// the cursor's current address — that check belongs to Continue, so a
// caller can always single-step across a breakpoint deliberately.
func (d *Debugger) Step() (bool, error) {
	if d.state == Halted {
		return true, nil
	}
	code, halted, err := d.eng.Step(d.env)
	if err != nil {
		return false, err
	}
	d.state = Paused
	if halted {
		d.state = Halted
		d.exitCode = code
	}
	return halted, nil
}

// Continue steps until the program halts, an enabled breakpoint's address
// is reached (after at least one step, so resuming from a breakpoint
// doesn't immediately re-trigger it), or a fatal error occurs.
func (d *Debugger) Continue() (bool, error) {
	d.state = Running
	for {
		halted, err := d.Step()
		if err != nil {
			d.state = Paused
			return false, err
		}
		if halted {
			return true, nil
		}
		if d.hitBreakpoint() {
			d.state = Paused
			return false, nil
		}
		d.state = Running
	}
}

func (d *Debugger) hitBreakpoint() bool {
	for _, bp := range d.breakpoints {
		if bp.Enabled && bp.Address == d.env.Cursor.Address {
			bp.HitCount++
			return true
		}
	}
	return false
}

// Inspect renders a structural dump of the cursor and every container,
// for an operator to read between steps.
func (d *Debugger) Inspect() string {
	return fmt.Sprintf("cursor: %s\ncontainers: %s",
		pretty.Sprint(d.env.Cursor), pretty.Sprint(d.env.Containers))
}
