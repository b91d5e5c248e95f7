// Package cursor implements the instruction pointer that walks a grid:
// its address, its current step (the row/column direction and magnitude a
// movement leaves it in), and the wrap/skip rules that keep it on a ragged
// row. Ported idiom-for-idiom from the reference VM's Cursor/Step/advance.
package cursor

import (
	"aheui/internal/grid"
	"aheui/internal/inst"
)

// Axis tags which address component a Step moves along.
type Axis int

const (
	AxisRow Axis = iota
	AxisColumn
)

// Step is the cursor's current direction: an axis and a signed magnitude
// (2 for the "skip one" movements, 1 otherwise). It persists across
// instructions until a movement other than None/Mirror* overrides it.
type Step struct {
	Axis   Axis
	Amount int8
}

func (s Step) reversed() Step {
	return Step{Axis: s.Axis, Amount: -s.Amount}
}

// Address is a (row, column) grid coordinate. Both halves are signed so
// intermediate arithmetic (before wrap normalization) can go negative.
type Address struct {
	Row int32
	Col int32
}

// Cursor is the instruction pointer: where it is, and which way it is
// currently stepping.
type Cursor struct {
	Address Address
	Step    Step
}

// New returns the cursor in its start state: address (0,0), stepping one
// row downward, matching every Aheui program's fixed entry point.
func New() Cursor {
	return Cursor{
		Address: Address{Row: 0, Col: 0},
		Step:    Step{Axis: AxisRow, Amount: 1},
	}
}

// next computes the step that movement leaves the cursor in, given its
// current step, then negates it if the instruction failed (reverse).
func next(current Step, movement inst.Movement, reverse bool) Step {
	var result Step
	switch movement {
	case inst.MoveNone:
		result = current
	case inst.MoveLeft:
		result = Step{AxisColumn, -1}
	case inst.MoveLeft2:
		result = Step{AxisColumn, -2}
	case inst.MoveRight:
		result = Step{AxisColumn, 1}
	case inst.MoveRight2:
		result = Step{AxisColumn, 2}
	case inst.MoveUp:
		result = Step{AxisRow, -1}
	case inst.MoveUp2:
		result = Step{AxisRow, -2}
	case inst.MoveDown:
		result = Step{AxisRow, 1}
	case inst.MoveDown2:
		result = Step{AxisRow, 2}
	case inst.MoveMirrorV:
		if current.Axis == AxisRow {
			result = current.reversed()
		} else {
			result = current
		}
	case inst.MoveMirrorH:
		if current.Axis == AxisColumn {
			result = current.reversed()
		} else {
			result = current
		}
	case inst.MoveMirror:
		result = current.reversed()
	default:
		result = current
	}
	if reverse {
		result = result.reversed()
	}
	return result
}

// Advance moves the cursor one instruction according to movement, wrapping
// or skipping absent cells as needed. reverse inverts the resulting step,
// which is how a failed operation (stack underflow, a false Cond, a failed
// Dup/Swap) turns the cursor around instead of raising an error.
//
// A row step that lands on an absent cell walks forward (or backward)
// through subsequent rows, wrapping past the last (or first) row, until it
// finds a row with a cell in the current column. A column step that runs
// off either end of its row wraps to the opposite end of that same row.
func (c *Cursor) Advance(g *grid.Grid, movement inst.Movement, reverse bool) {
	c.Step = next(c.Step, movement, reverse)

	switch c.Step.Axis {
	case AxisRow:
		amount := c.Step.Amount
		c.Address.Row += int32(amount)
		height := int32(g.Height())
		if amount > 0 {
			for {
				if _, ok := g.CellAt(int(c.Address.Row), int(c.Address.Col)); ok {
					break
				}
				// row+1 < height (not <=) is the reference VM's own wrap
				// bound, kept deliberately.
				if c.Address.Row+1 < height {
					c.Address.Row++
				} else {
					c.Address.Row = 0
				}
			}
		} else if amount < 0 {
			for {
				if _, ok := g.CellAt(int(c.Address.Row), int(c.Address.Col)); ok {
					break
				}
				if c.Address.Row >= 1 {
					c.Address.Row--
				} else {
					c.Address.Row = height - 1
				}
			}
		}
	case AxisColumn:
		amount := c.Step.Amount
		c.Address.Col += int32(amount)
		lineLen := int32(g.RowLen(int(c.Address.Row)))
		if c.Address.Col < 0 && amount < 0 {
			c.Address.Col = lineLen - 1
		} else if c.Address.Col >= lineLen && amount > 0 {
			c.Address.Col = 0
		}
	}
}
