// Package decode implements the bit-exact mapping from a Unicode code point
// to an inst.Instruction: the Hangul syllable decomposition into choseong
// (operation), jungseong (movement) and jongseong (operand/selector), ported
// from aheui-core's From<char> for Inst.
package decode

import "aheui/internal/inst"

const (
	syllableBase  = 0xAC00
	syllableLast  = 0xD7A3
	jungseongSize = 21
	jongseongSize = 28
)

// Rune decodes a single Unicode code point into its instruction. Every code
// point produces a value; there is no failure mode. Characters outside the
// precomposed Hangul syllable block decode to inst.Nop.
func Rune(r rune) inst.Instruction {
	if r < syllableBase || r > syllableLast {
		return inst.Nop
	}

	idx := uint32(r) - syllableBase
	choseong := idx / (jongseongSize * jungseongSize)
	jungseong := (idx % (jongseongSize * jungseongSize)) / jongseongSize
	jongseong := idx % jongseongSize

	return inst.Instruction{
		Movement: movementOf(jungseong),
		Op:       opOf(choseong, jongseong),
		Operand:  operandOf(choseong, jongseong),
		Target:   targetOf(choseong, jongseong),
	}
}

func movementOf(jungseong uint32) inst.Movement {
	switch jungseong {
	case 0: // ㅏ
		return inst.MoveRight
	case 2: // ㅑ
		return inst.MoveRight2
	case 4: // ㅓ
		return inst.MoveLeft
	case 6: // ㅕ
		return inst.MoveLeft2
	case 8: // ㅗ
		return inst.MoveUp
	case 12: // ㅛ
		return inst.MoveUp2
	case 13: // ㅜ
		return inst.MoveDown
	case 17: // ㅠ
		return inst.MoveDown2
	case 18: // ㅡ
		return inst.MoveMirrorV
	case 19: // ㅢ
		return inst.MoveMirror
	case 20: // ㅣ
		return inst.MoveMirrorH
	default:
		return inst.MoveNone
	}
}

func opOf(choseong, jongseong uint32) inst.Op {
	switch choseong {
	case 2: // ㄴ
		return inst.OpDiv
	case 3: // ㄷ
		return inst.OpAdd
	case 4: // ㄸ
		return inst.OpMul
	case 5: // ㄹ
		return inst.OpMod
	case 6: // ㅁ
		switch jongseong {
		case 21: // ㅇ
			return inst.OpWriteInt
		case 27: // ㅎ
			return inst.OpWriteChar
		default:
			return inst.OpPop
		}
	case 7: // ㅂ
		switch jongseong {
		case 21:
			return inst.OpReadInt
		case 27:
			return inst.OpReadChar
		default:
			return inst.OpPush
		}
	case 8: // ㅃ
		return inst.OpDup
	case 9: // ㅅ
		return inst.OpSelect
	case 10: // ㅆ
		return inst.OpMove
	case 12: // ㅈ
		return inst.OpCompare
	case 14: // ㅊ
		return inst.OpCond
	case 16: // ㅌ
		return inst.OpSub
	case 17: // ㅍ
		return inst.OpSwap
	case 18: // ㅎ
		return inst.OpHalt
	default: // includes ㅇ (11), the explicit Nop consonant
		return inst.OpNop
	}
}

// operandOf returns the literal pushed by a Push instruction; it is unused
// (and zero) for every other operation, including the ReadInt/ReadChar
// jongseong values that alias the ㅂ push table.
func operandOf(choseong, jongseong uint32) int32 {
	if choseong != 7 {
		return 0
	}
	switch jongseong {
	case 0:
		return 0
	case 1, 4, 19:
		return 2
	case 7, 22, 24:
		return 3
	case 2, 3, 16, 17, 20, 23, 25, 26:
		return 4
	case 5, 6, 8:
		return 5
	case 18:
		return 6
	case 9, 12:
		return 7
	case 15:
		return 8
	case 10, 11, 13, 14:
		return 9
	default: // 21, 27: ReadInt / ReadChar, not a push
		return 0
	}
}

// targetOf returns the container a Select/Move instruction addresses; it is
// unused for every other operation.
func targetOf(choseong, jongseong uint32) inst.Select {
	if choseong != 9 && choseong != 10 {
		return inst.Select{}
	}
	return selectOf(jongseong)
}

func selectOf(jongseong uint32) inst.Select {
	switch jongseong {
	case 21: // ㅇ
		return inst.Select{Kind: inst.SelectQueue}
	case 27: // ㅎ
		return inst.Select{Kind: inst.SelectChannel}
	default:
		return inst.Select{Kind: inst.SelectStack, StackID: uint8(jongseong)}
	}
}
