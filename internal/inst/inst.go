// Package inst defines the tagged instruction model that the decoder produces
// and the execution engine consumes: a movement directive, an operation, and
// the container selectors an operation may carry.
package inst

import "fmt"

// Movement is the cursor-control half of a decoded instruction.
type Movement int

const (
	MoveNone Movement = iota
	MoveLeft
	MoveLeft2
	MoveRight
	MoveRight2
	MoveUp
	MoveUp2
	MoveDown
	MoveDown2
	MoveMirrorV
	MoveMirrorH
	MoveMirror
)

func (m Movement) String() string {
	switch m {
	case MoveNone:
		return "None"
	case MoveLeft:
		return "Left"
	case MoveLeft2:
		return "Left2"
	case MoveRight:
		return "Right"
	case MoveRight2:
		return "Right2"
	case MoveUp:
		return "Up"
	case MoveUp2:
		return "Up2"
	case MoveDown:
		return "Down"
	case MoveDown2:
		return "Down2"
	case MoveMirrorV:
		return "MirrorV"
	case MoveMirrorH:
		return "MirrorH"
	case MoveMirror:
		return "Mirror"
	default:
		return fmt.Sprintf("Movement(%d)", int(m))
	}
}

// DirectionPreserving reports whether the movement leaves the cursor's
// current direction in place rather than overriding it outright. The
// precompiler uses this to decide whether an entry point's identity must
// carry the direction it was discovered with (see trace.EntryPoint).
func (m Movement) DirectionPreserving() bool {
	switch m {
	case MoveNone, MoveMirrorV, MoveMirrorH, MoveMirror:
		return true
	default:
		return false
	}
}

// Op is the operation half of a decoded instruction.
type Op int

const (
	OpNop Op = iota
	OpHalt
	OpAdd
	OpMul
	OpSub
	OpDiv
	OpMod
	OpWriteChar
	OpWriteInt
	OpPop
	OpReadChar
	OpReadInt
	OpPush
	OpDup
	OpSwap
	OpSelect
	OpMove
	OpCompare
	OpCond
)

func (o Op) String() string {
	switch o {
	case OpNop:
		return "Nop"
	case OpHalt:
		return "Halt"
	case OpAdd:
		return "Add"
	case OpMul:
		return "Mul"
	case OpSub:
		return "Sub"
	case OpDiv:
		return "Div"
	case OpMod:
		return "Mod"
	case OpWriteChar:
		return "WriteChar"
	case OpWriteInt:
		return "WriteInt"
	case OpPop:
		return "Pop"
	case OpReadChar:
		return "ReadChar"
	case OpReadInt:
		return "ReadInt"
	case OpPush:
		return "Push"
	case OpDup:
		return "Dup"
	case OpSwap:
		return "Swap"
	case OpSelect:
		return "Select"
	case OpMove:
		return "Move"
	case OpCompare:
		return "Compare"
	case OpCond:
		return "Cond"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// SelectKind tags which family of container a Select carries: one of the 28
// numbered stacks, the single queue, or the unsupported channel.
type SelectKind int

const (
	SelectStack SelectKind = iota
	SelectQueue
	SelectChannel
)

// Select identifies one container. For SelectStack, StackID is in [0, 28).
type Select struct {
	Kind    SelectKind
	StackID uint8
}

func (s Select) String() string {
	switch s.Kind {
	case SelectStack:
		return fmt.Sprintf("Stack(%d)", s.StackID)
	case SelectQueue:
		return "Queue"
	case SelectChannel:
		return "Channel"
	default:
		return "Select(?)"
	}
}

// Instruction is one decoded grid cell: a movement plus an operation. Push
// carries its literal in Operand; Select/Move carry their target container
// in Target. Both fields are zero-valued and ignored for every other Op.
type Instruction struct {
	Movement Movement
	Op       Op
	Operand  int32
	Target   Select
}

// Nop is the instruction every non-Hangul-syllable code point decodes to.
var Nop = Instruction{Movement: MoveNone, Op: OpNop}
