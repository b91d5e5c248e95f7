package engine

import (
	"aheui/internal/container"
	"aheui/internal/diag"
	"aheui/internal/inst"
)

// Engine is anything able to execute one decoded instruction against an
// Env. Interpreter is the direct port of the reference tree-walking
// engine; Traced (internal/trace) is the fused, entry-point-discovering
// alternative that satisfies the same interface.
type Engine interface {
	// Step executes exactly one instruction. halted reports whether the
	// program reached Halt, in which case exitCode is the value it
	// produced. err is non-nil only for a condition this implementation
	// treats as fatal rather than reversible (see Open Question decisions).
	Step(env *Env) (exitCode int32, halted bool, err error)
}

// Interpreter executes one grid cell per Step call: the straightforward,
// always-correct reference engine every other engine is checked against.
type Interpreter struct{}

// Run drives env to completion (or to a fatal error) against eng, one
// Step call at a time.
func Run(env *Env, eng Engine) (exitCode int32, err error) {
	for {
		code, halted, stepErr := eng.Step(env)
		if stepErr != nil {
			return 0, stepErr
		}
		if halted {
			return code, nil
		}
	}
}

func (Interpreter) Step(env *Env) (int32, bool, error) {
	addr := env.Cursor.Address
	cell, ok := env.Grid.CellAt(int(addr.Row), int(addr.Col))
	if !ok {
		return 0, false, diag.New(diag.Runtime, "cursor is on an absent cell").
			WithLocation(int(addr.Row), int(addr.Col))
	}

	reverse := false

	switch cell.Op {
	case inst.OpNop:
		// no effect

	case inst.OpHalt:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		value, _ := storage.TryPop()
		return value, true, nil

	case inst.OpAdd:
		reverse = !foldSelected(env, addr, func(a, b int32) int32 { return b + a })
	case inst.OpMul:
		reverse = !foldSelected(env, addr, func(a, b int32) int32 { return b * a })
	case inst.OpSub:
		reverse = !foldSelected(env, addr, func(a, b int32) int32 { return b - a })
	case inst.OpDiv:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		var divErr error
		ok := storage.Fold(func(a, b int32) int32 {
			if a == 0 {
				divErr = diag.New(diag.Runtime, "division by zero").WithLocation(int(addr.Row), int(addr.Col))
				return b
			}
			return b / a
		})
		if divErr != nil {
			return 0, false, divErr
		}
		reverse = !ok
	case inst.OpMod:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		var modErr error
		ok := storage.Fold(func(a, b int32) int32 {
			if a == 0 {
				modErr = diag.New(diag.Runtime, "modulo by zero").WithLocation(int(addr.Row), int(addr.Col))
				return b
			}
			return b % a
		})
		if modErr != nil {
			return 0, false, modErr
		}
		reverse = !ok

	case inst.OpWriteChar:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		if value, popped := storage.TryPop(); popped {
			if werr := env.WriteChar(value); werr != nil {
				return 0, false, werr
			}
		} else {
			reverse = true
		}

	case inst.OpWriteInt:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		if value, popped := storage.TryPop(); popped {
			if werr := env.WriteInt(value); werr != nil {
				return 0, false, werr
			}
		} else {
			reverse = true
		}

	case inst.OpPop:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		if _, popped := storage.TryPop(); !popped {
			reverse = true
		}

	case inst.OpReadChar:
		value, rerr := env.ReadChar()
		if rerr != nil {
			return 0, false, rerr
		}
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		storage.Push(value)

	case inst.OpReadInt:
		value, rerr := env.ReadInt()
		if rerr != nil {
			return 0, false, rerr
		}
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		storage.Push(value)

	case inst.OpPush:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		storage.Push(cell.Operand)

	case inst.OpDup:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		reverse = !storage.Dup()

	case inst.OpSwap:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		reverse = !storage.Swap()

	case inst.OpSelect:
		if cell.Target.Kind == inst.SelectChannel {
			return 0, false, diag.New(diag.Runtime, "channel is not a supported storage target").
				WithLocation(int(addr.Row), int(addr.Col))
		}
		env.Containers.SetSelected(cell.Target)

	case inst.OpMove:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		if value, popped := storage.TryPop(); popped {
			dest, derr := env.Containers.Get(cell.Target)
			if derr != nil {
				return 0, false, wrapSelectErr(derr, addr)
			}
			dest.Push(value)
		} else {
			reverse = true
		}

	case inst.OpCompare:
		reverse = !foldSelected(env, addr, func(a, b int32) int32 {
			if a <= b {
				return 1
			}
			return 0
		})

	case inst.OpCond:
		storage, serr := env.Containers.Selected()
		if serr != nil {
			return 0, false, wrapSelectErr(serr, addr)
		}
		value, popped := storage.TryPop()
		if !popped || value == 0 {
			reverse = true
		}
	}

	env.Cursor.Advance(env.Grid, cell.Movement, reverse)
	return 0, false, nil
}

// foldSelected is the shared shape behind Add/Mul/Sub/Compare: fold the
// selected container's top two values with f and report whether there
// were enough values to do so.
func foldSelected(env *Env, addr cursor.Address, f func(a, b int32) int32) bool {
	storage, serr := env.Containers.Selected()
	if serr != nil {
		// A Select instruction already rejects Channel outright, so the
		// selected container can only fail to resolve here if that
		// invariant is broken; surface it as a reversed step rather than
		// silently succeeding.
		return false
	}
	return storage.Fold(f)
}

func wrapSelectErr(err error, addr cursor.Address) error {
	if err == container.ErrChannelUnsupported {
		return diag.Wrap(err, diag.Runtime, "channel is not a supported storage target").
			WithLocation(int(addr.Row), int(addr.Col))
	}
	return diag.Wrap(err, diag.Runtime, "container selection failed").
		WithLocation(int(addr.Row), int(addr.Col))
}
