package debugger

import (
	"bytes"
	"strings"
	"testing"

	"aheui/internal/cursor"
	"aheui/internal/engine"
	"aheui/internal/grid"
)

func newDebugger(program string) (*Debugger, *bytes.Buffer) {
	g := grid.Parse(strings.Split(program, "\n"))
	var out bytes.Buffer
	env := engine.NewEnv(g, strings.NewReader(""), &out)
	return New(env, engine.Interpreter{}), &out
}

func TestStepAdvancesOneInstructionAtATime(t *testing.T) {
	d, _ := newDebugger("밙밦다희") // push5, push6, add, halt
	for i := 0; i < 3; i++ {
		halted, err := d.Step()
		if err != nil {
			t.Fatalf("Step() error = %v", err)
		}
		if halted {
			t.Fatalf("Step() halted after %d steps, want 4", i+1)
		}
	}
	halted, err := d.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !halted {
		t.Fatalf("Step() should have halted on the 4th instruction")
	}
	if d.ExitCode() != 11 {
		t.Fatalf("ExitCode() = %d, want 11", d.ExitCode())
	}
	if d.State() != Halted {
		t.Fatalf("State() = %v, want Halted", d.State())
	}
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	d, _ := newDebugger("밙밦다희")
	// The Add cell sits at column 2.
	d.AddBreakpoint(cursor.Address{Row: 0, Col: 2})

	halted, err := d.Continue()
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if halted {
		t.Fatalf("Continue() halted, want it to stop at the breakpoint first")
	}
	if d.State() != Paused {
		t.Fatalf("State() = %v, want Paused", d.State())
	}

	bps := d.Breakpoints()
	if len(bps) != 1 || bps[0].HitCount != 1 {
		t.Fatalf("breakpoint bookkeeping = %+v, want one hit", bps)
	}

	halted, err = d.Continue()
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if !halted {
		t.Fatalf("Continue() should run to completion once past the breakpoint")
	}
	if d.ExitCode() != 11 {
		t.Fatalf("ExitCode() = %d, want 11", d.ExitCode())
	}
}

func TestRemoveBreakpointStopsContinueFromPausing(t *testing.T) {
	d, _ := newDebugger("밙밦다희")
	id := d.AddBreakpoint(cursor.Address{Row: 0, Col: 2})
	if !d.RemoveBreakpoint(id) {
		t.Fatalf("RemoveBreakpoint() = false, want true")
	}
	halted, err := d.Continue()
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if !halted {
		t.Fatalf("Continue() should run to completion with no breakpoints left")
	}
}

func TestInspectRendersCursorAndContainers(t *testing.T) {
	d, _ := newDebugger("밙밦다희")
	if _, err := d.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	dump := d.Inspect()
	if !strings.Contains(dump, "cursor") || !strings.Contains(dump, "containers") {
		t.Fatalf("Inspect() = %q, want it to mention both cursor and containers", dump)
	}
}
