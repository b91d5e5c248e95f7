// Package container implements the storage family a running program
// addresses: 28 independent stacks and one queue, reached through a single
// Select so the engine never has to branch on which kind of container it
// is holding. Ported from the reference VM's StorageSelector/Storage trait.
package container

import (
	"errors"

	"aheui/internal/inst"
)

// ErrChannelUnsupported is returned by Get/Selected when a program selects
// the Channel container. Channel has no storage semantics in this
// implementation (see the design notes); callers turn this into a
// diagnostic rather than letting it reach a panic.
var ErrChannelUnsupported = errors.New("container: channel is not a supported storage target")

// Storage is the contract every container (stack or queue) satisfies. The
// fold/dup/swap operations report failure by returning false/false rather
// than panicking, since a failed container operation is the normal trigger
// for reversing the cursor, not a fault.
type Storage interface {
	Len() int
	Push(v int32)
	TryPop() (int32, bool)
	// Fold pops the top two values (a then b, in the order a program would
	// pop them), computes f(a, b), and pushes the result back in place of
	// the two operands. It reports false, performing no mutation, when
	// fewer than two values are available. Stack and Queue disagree on
	// where the combined result ends up relative to subsequent pushes —
	// see their individual doc comments.
	Fold(f func(a, b int32) int32) bool
	Swap() bool
	Dup() bool
}

// Stack is a LIFO int32 container.
type Stack struct {
	data []int32
}

func (s *Stack) Len() int { return len(s.data) }

func (s *Stack) Push(v int32) { s.data = append(s.data, v) }

func (s *Stack) TryPop() (int32, bool) {
	n := len(s.data)
	if n == 0 {
		return 0, false
	}
	v := s.data[n-1]
	s.data = s.data[:n-1]
	return v, true
}

// Fold combines the top value (a) with the one beneath it (b) and leaves
// the result on top, exactly where b sat — a plain LIFO reduce.
func (s *Stack) Fold(f func(a, b int32) int32) bool {
	n := len(s.data)
	if n < 2 {
		return false
	}
	a := s.data[n-1]
	b := s.data[n-2]
	s.data = s.data[:n-1]
	s.data[n-2] = f(a, b)
	return true
}

func (s *Stack) Swap() bool {
	n := len(s.data)
	if n < 2 {
		return false
	}
	s.data[n-1], s.data[n-2] = s.data[n-2], s.data[n-1]
	return true
}

func (s *Stack) Dup() bool {
	n := len(s.data)
	if n == 0 {
		return false
	}
	s.data = append(s.data, s.data[n-1])
	return true
}

// Queue is a FIFO int32 container. Its Fold disagrees with Stack's: the
// combined result is pushed to the tail, not left at the head, so a
// sequence of folds on a queue behaves like a running accumulator that the
// next Push lands behind, not in front of.
type Queue struct {
	data []int32
}

func (q *Queue) Len() int { return len(q.data) }

func (q *Queue) Push(v int32) { q.data = append(q.data, v) }

func (q *Queue) TryPop() (int32, bool) {
	if len(q.data) == 0 {
		return 0, false
	}
	v := q.data[0]
	q.data = q.data[1:]
	return v, true
}

func (q *Queue) Fold(f func(a, b int32) int32) bool {
	if len(q.data) < 2 {
		return false
	}
	a := q.data[0]
	b := q.data[1]
	q.data = q.data[2:]
	q.data = append(q.data, f(a, b))
	return true
}

func (q *Queue) Swap() bool {
	if len(q.data) < 2 {
		return false
	}
	q.data[0], q.data[1] = q.data[1], q.data[0]
	return true
}

// Dup duplicates the front element in place, at the head, not the tail —
// two copies of it are now next in line to be popped.
func (q *Queue) Dup() bool {
	if len(q.data) == 0 {
		return false
	}
	front := q.data[0]
	q.data = append([]int32{front}, q.data...)
	return true
}

// Family is the full addressable set of containers a program sees: 28
// numbered stacks plus one queue, reached through whichever inst.Select a
// Select/Move instruction last set.
type Family struct {
	selected inst.Select
	stacks   [28]Stack
	queue    Queue
}

// NewFamily returns a family with stack 0 selected, matching a program's
// storage state at its entry point.
func NewFamily() *Family {
	return &Family{selected: inst.Select{Kind: inst.SelectStack, StackID: 0}}
}

// SetSelected changes which container subsequent operations address.
func (f *Family) SetSelected(s inst.Select) {
	f.selected = s
}

// Selected returns the currently addressed container.
func (f *Family) Selected() (Storage, error) {
	return f.Get(f.selected)
}

// Get returns the container s addresses, or ErrChannelUnsupported if s
// names the channel.
func (f *Family) Get(s inst.Select) (Storage, error) {
	switch s.Kind {
	case inst.SelectStack:
		return &f.stacks[s.StackID], nil
	case inst.SelectQueue:
		return &f.queue, nil
	default:
		return nil, ErrChannelUnsupported
	}
}
