package cursor

import (
	"testing"

	"aheui/internal/grid"
	"aheui/internal/inst"
)

func TestNewStartsAtOriginSteppingDown(t *testing.T) {
	c := New()
	if c.Address != (Address{Row: 0, Col: 0}) {
		t.Fatalf("New().Address = %+v, want (0,0)", c.Address)
	}
	if c.Step != (Step{Axis: AxisRow, Amount: 1}) {
		t.Fatalf("New().Step = %+v, want Row(1)", c.Step)
	}
}

func TestAdvancePlainMovement(t *testing.T) {
	g := grid.Parse([]string{"바방", "바방"})
	c := New()
	c.Advance(g, inst.MoveNone, false)
	if c.Address != (Address{Row: 1, Col: 0}) {
		t.Fatalf("after one None advance, address = %+v, want (1,0)", c.Address)
	}
}

func TestAdvanceColumnWrap(t *testing.T) {
	g := grid.Parse([]string{"바방"})
	c := New()
	c.Advance(g, inst.MoveRight, false)
	if c.Address != (Address{Row: 0, Col: 1}) {
		t.Fatalf("address = %+v, want (0,1)", c.Address)
	}
	c.Advance(g, inst.MoveRight, false)
	if c.Address != (Address{Row: 0, Col: 0}) {
		t.Fatalf("address after wrap = %+v, want (0,0)", c.Address)
	}
}

func TestAdvanceColumnWrapLeft(t *testing.T) {
	g := grid.Parse([]string{"바방"})
	c := New()
	c.Advance(g, inst.MoveLeft, false)
	if c.Address != (Address{Row: 0, Col: 1}) {
		t.Fatalf("wrapping left from col 0, address = %+v, want (0,1)", c.Address)
	}
}

func TestAdvanceSkipsEmptyRows(t *testing.T) {
	// Row 1 is empty; a downward row step must skip over it to row 2.
	g := grid.Parse([]string{"바방", "", "바방"})
	c := New()
	c.Advance(g, inst.MoveDown, false)
	if c.Address != (Address{Row: 2, Col: 0}) {
		t.Fatalf("address = %+v, want (2,0) after skipping the empty row", c.Address)
	}
}

func TestAdvanceWrapsPastLastRow(t *testing.T) {
	g := grid.Parse([]string{"바방", "바방"})
	c := Cursor{Address: Address{Row: 1, Col: 0}, Step: Step{Axis: AxisRow, Amount: 1}}
	c.Advance(g, inst.MoveDown, false)
	if c.Address.Row != 0 {
		t.Fatalf("row wrapped to %d, want 0", c.Address.Row)
	}
}

func TestAdvanceWrapsPastFirstRowGoingUp(t *testing.T) {
	g := grid.Parse([]string{"바방", "바방"})
	c := Cursor{Address: Address{Row: 0, Col: 0}, Step: Step{Axis: AxisRow, Amount: -1}}
	c.Advance(g, inst.MoveUp, false)
	if c.Address.Row != 1 {
		t.Fatalf("row wrapped to %d, want 1", c.Address.Row)
	}
}

func TestAdvanceReverseInvertsStep(t *testing.T) {
	g := grid.Parse([]string{"바방"})
	c := New()
	// A reversed MoveRight behaves like MoveLeft.
	c.Advance(g, inst.MoveRight, true)
	if c.Address != (Address{Row: 0, Col: 1}) {
		t.Fatalf("reversed MoveRight: address = %+v, want (0,1)", c.Address)
	}
}

func TestAdvanceMirrorVFlipsRowStep(t *testing.T) {
	g := grid.Parse([]string{"바방", "바방", "바방"})
	c := Cursor{Address: Address{Row: 1, Col: 0}, Step: Step{Axis: AxisRow, Amount: 1}}
	c.Advance(g, inst.MoveMirrorV, false)
	if c.Step != (Step{Axis: AxisRow, Amount: -1}) {
		t.Fatalf("step after MirrorV = %+v, want Row(-1)", c.Step)
	}
	if c.Address.Row != 0 {
		t.Fatalf("address.Row = %d, want 0", c.Address.Row)
	}
}

func TestAdvanceMirrorVIgnoresColumnStep(t *testing.T) {
	g := grid.Parse([]string{"바방"})
	c := Cursor{Address: Address{Row: 0, Col: 0}, Step: Step{Axis: AxisColumn, Amount: 1}}
	c.Advance(g, inst.MoveMirrorV, false)
	if c.Step != (Step{Axis: AxisColumn, Amount: 1}) {
		t.Fatalf("MirrorV should leave a column step untouched, got %+v", c.Step)
	}
}

func TestAdvanceMirrorFlipsWhicheverAxisIsActive(t *testing.T) {
	g := grid.Parse([]string{"바방"})
	c := Cursor{Address: Address{Row: 0, Col: 1}, Step: Step{Axis: AxisColumn, Amount: 1}}
	c.Advance(g, inst.MoveMirror, false)
	if c.Step != (Step{Axis: AxisColumn, Amount: -1}) {
		t.Fatalf("step after Mirror = %+v, want Column(-1)", c.Step)
	}
}
