// Package sequence provides Sequence, an ordered container backed by a splay
// tree. Elements are addressed by iterators that stay valid until their
// element is removed. Positional lookup, insertion, removal, and moving a
// whole range into another sequence all run in amortized O(log n).
//
// A Sequence is not safe for concurrent use. Misuse, such as passing an
// iterator of a removed element or touching a sequence from inside its own
// sort comparator, is logged and the operation returns a zero value instead
// of corrupting the tree.
package sequence

import (
	"iter"
)

type mode int

const (
	modeNormal mode = iota
	// modeReorganizing is set while sort, search, and sorted insertion walk
	// or rebuild the tree. Nothing may touch the sequence then.
	modeReorganizing
	// modeVisiting is set during ForeachRange. Only the visited element may
	// be used, so the callback can remove or move it.
	modeVisiting
)

// Sequence is an ordered list of values of type T.
type Sequence[T any] struct {
	end     *Iter[T]
	destroy func(T)
	mode    mode
	current *Iter[T]
}

// New returns an empty sequence. destroy, if not nil, is called exactly once
// for every value that leaves the sequence by removal, replacement, or Free.
func New[T any](destroy func(T)) *Sequence[T] {
	s := &Sequence[T]{destroy: destroy}
	s.end = &Iter[T]{size: 1, seq: s}
	return s
}

// usable reports whether op may run on s now, logging why not.
func (s *Sequence[T]) usable(op string) bool {
	switch {
	case s == nil:
		warn(op, "nil sequence")
		return false
	case s.end == nil:
		warn(op, "sequence has been freed")
		return false
	case s.mode == modeVisiting:
		warn(op, "only the visited element may be used during foreach")
		return false
	case s.mode != modeNormal:
		warn(op, "accessing a sequence while it is being sorted is not allowed")
		return false
	}
	return true
}

// acquire returns the sequence that owns it if op may use it now. subject is
// the element op acts on; during ForeachRange only the visited element may
// be acted on.
func acquire[T any](op string, it, subject *Iter[T]) *Sequence[T] {
	if it == nil {
		warn(op, "nil iterator")
		return nil
	}
	s := peekSequence(it)
	if s == nil {
		warn(op, "iterator does not belong to a sequence")
		return nil
	}
	switch s.mode {
	case modeNormal:
	case modeVisiting:
		if subject == nil || subject != s.current {
			warn(op, "only the visited element may be used during foreach")
			return nil
		}
	default:
		warn(op, "accessing a sequence while it is being sorted is not allowed")
		return nil
	}
	// Same lookup again, splaying this time so the walk is paid for.
	last(it)
	return s
}

// Free removes every element, calling the destroy function on each, and
// releases the sequence. Iterators into s become invalid.
func (s *Sequence[T]) Free() {
	if !s.usable("free") {
		return
	}
	end := s.end
	s.end = nil
	freeTree(end, s.destroy)
}

// Len returns the number of elements.
func (s *Sequence[T]) Len() int {
	if !s.usable("len") {
		return 0
	}
	return treeSize(s.end) - 1
}

// Begin returns the iterator of the first element, or End when s is empty.
func (s *Sequence[T]) Begin() *Iter[T] {
	if !s.usable("begin") {
		return nil
	}
	return first(s.end)
}

// End returns the iterator positioned one past the last element.
func (s *Sequence[T]) End() *Iter[T] {
	if !s.usable("end") {
		return nil
	}
	return s.end
}

func (s *Sequence[T]) clamp(pos int) int {
	n := treeSize(s.end) - 1
	if pos < 0 || pos > n {
		return n
	}
	return pos
}

// At returns the iterator at pos. A negative pos or one past the last
// element returns End.
func (s *Sequence[T]) At(pos int) *Iter[T] {
	if !s.usable("at") {
		return nil
	}
	return atRank(s.end, s.clamp(pos))
}

// Append adds v as the last element.
func (s *Sequence[T]) Append(v T) *Iter[T] {
	if !s.usable("append") {
		return nil
	}
	n := newNode(v)
	joinBefore(s.end, n)
	return n
}

// Prepend adds v as the first element.
func (s *Sequence[T]) Prepend(v T) *Iter[T] {
	if !s.usable("prepend") {
		return nil
	}
	n := newNode(v)
	joinBefore(first(s.end), n)
	return n
}

// Foreach calls fn for every element in order. See ForeachRange.
func (s *Sequence[T]) Foreach(fn func(it *Iter[T])) {
	if !s.usable("foreach") {
		return
	}
	ForeachRange(first(s.end), s.end, fn)
}

// Values returns a copy of the elements in order.
func (s *Sequence[T]) Values() []T {
	if !s.usable("values") {
		return nil
	}
	out := make([]T, 0, treeSize(s.end)-1)
	for it := first(s.end); it != s.end; it = successor(it) {
		out = append(out, it.value)
	}
	return out
}

// All returns an iterator over the values in order. The element after the
// current one is looked up before yielding, so removing the current element
// during the loop is allowed. If the loop body removes or moves away the
// element that would come next, iteration stops there with a warning.
func (s *Sequence[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if !s.usable("all") {
			return
		}
		for it := first(s.end); it != s.end; {
			if peekSequence(it) != s {
				warn("all", "next element left the sequence during iteration, stopping early")
				return
			}
			next := successor(it)
			if !yield(it.value) || s.end == nil {
				return
			}
			it = next
		}
	}
}
