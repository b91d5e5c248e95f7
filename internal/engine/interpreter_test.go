package engine

import (
	"bytes"
	"strings"
	"testing"

	"aheui/internal/grid"
)

func run(t *testing.T, program string, input string) (string, int32, error) {
	t.Helper()
	g := grid.Parse(strings.Split(program, "\n"))
	var out bytes.Buffer
	env := NewEnv(g, strings.NewReader(input), &out)
	code, err := Run(env, Interpreter{})
	return out.String(), code, err
}

func TestHaltReturnsPoppedValue(t *testing.T) {
	_, code, err := run(t, "밦희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 6 {
		t.Fatalf("exit code = %d, want 6", code)
	}
}

func TestHaltOnEmptyStackReturnsZero(t *testing.T) {
	_, code, err := run(t, "희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestAddFoldsTopTwoValues(t *testing.T) {
	// push 5, push 6, add (-> 11), halt
	_, code, err := run(t, "밙밦다희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 11 {
		t.Fatalf("exit code = %d, want 11", code)
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	// push 5, push 0, div
	_, _, err := run(t, "밙바나희", "")
	if err == nil {
		t.Fatalf("Run() should fail on division by zero")
	}
}

func TestCondOnTruthyValueContinues(t *testing.T) {
	// push 6, cond pops it (6 != 0, so no reversal), halt on an empty stack.
	_, code, err := run(t, "밦차희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stack emptied by halt)", code)
	}
}

func TestWriteIntOnLiteral(t *testing.T) {
	out, _, err := run(t, "밙망희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "5" {
		t.Fatalf("output = %q, want %q", out, "5")
	}
}

func TestReadCharWriteCharRoundTrip(t *testing.T) {
	out, _, err := run(t, "밯맣희", "A")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "A" {
		t.Fatalf("output = %q, want %q", out, "A")
	}
}

func TestReadIntWriteIntRoundTrip(t *testing.T) {
	out, _, err := run(t, "방망희", "42\n")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != "42" {
		t.Fatalf("output = %q, want %q", out, "42")
	}
}

func TestPopSucceedsAndAdvances(t *testing.T) {
	// push 0, pop it (succeeds, no reversal), halt on an empty stack.
	_, code, err := run(t, "바마희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestMoveTransfersBetweenStacks(t *testing.T) {
	// push 5 onto stack 0, move it to stack 1, select stack 1, pop it
	// back off (succeeds because the move actually landed it there).
	_, code, err := run(t, "밙싹삭마희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestSelectChannelIsFatal(t *testing.T) {
	_, _, err := run(t, "샇희", "")
	if err == nil {
		t.Fatalf("Run() should fail when a program selects the channel")
	}
}

func TestSwapAndDup(t *testing.T) {
	// push 5, push 6, swap (-> top is 5), dup (-> two 5s), add (-> 10), halt
	_, code, err := run(t, "밙밦파빠다희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 10 {
		t.Fatalf("exit code = %d, want 10", code)
	}
}

func TestCompareProducesBooleanInt(t *testing.T) {
	// push 5, push 6: a(top)=6, b=5; a<=b? 6<=5 is false -> 0
	_, code, err := run(t, "밙밦자희", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}
