package sequence

// Value returns the element at it. It returns the zero value for the end
// iterator. Value may be called from comparators.
func (it *Iter[T]) Value() T {
	var zero T
	if it == nil {
		warn("value", "nil iterator")
		return zero
	}
	if it.isEnd() {
		warn("value", "end iterator has no value")
		return zero
	}
	return it.value
}

// IsEnd reports whether it is the end iterator of its sequence. IsEnd may be
// called from comparators.
func (it *Iter[T]) IsEnd() bool {
	if it == nil {
		warn("is_end", "nil iterator")
		return false
	}
	return it.isEnd()
}

// Set replaces the element at it with v, destroying the old element first.
func (it *Iter[T]) Set(v T) {
	s := acquire("set", it, it)
	if s == nil {
		return
	}
	if it.isEnd() {
		warn("set", "cannot set the end iterator")
		return
	}
	if s.destroy != nil {
		s.destroy(it.value)
	}
	it.value = v
}

// IsBegin reports whether it is the first position of its sequence.
func (it *Iter[T]) IsBegin() bool {
	if acquire("is_begin", it, it) == nil {
		return false
	}
	return predecessor(it) == it
}

// Next returns the following iterator. Next of the end iterator is the end
// iterator.
func (it *Iter[T]) Next() *Iter[T] {
	if acquire("next", it, it) == nil {
		return nil
	}
	return successor(it)
}

// Prev returns the preceding iterator. Prev of the first iterator is itself.
func (it *Iter[T]) Prev() *Iter[T] {
	if acquire("prev", it, it) == nil {
		return nil
	}
	return predecessor(it)
}

// Position returns the 0-based index of it, or -1 if it cannot be used.
func (it *Iter[T]) Position() int {
	if acquire("position", it, it) == nil {
		return -1
	}
	return rankOf(it)
}

// Skip returns the iterator delta positions away from it, clamped the same
// way as Sequence.At.
func (it *Iter[T]) Skip(delta int) *Iter[T] {
	s := acquire("skip", it, it)
	if s == nil {
		return nil
	}
	return atRank(it, s.clamp(rankOf(it)+delta))
}

// Sequence returns the sequence it belongs to.
func (it *Iter[T]) Sequence() *Sequence[T] {
	return acquire("sequence", it, it)
}

// InsertBefore adds v immediately before it and returns the new iterator.
// Inserting before the end iterator appends.
func (it *Iter[T]) InsertBefore(v T) *Iter[T] {
	if acquire("insert_before", it, nil) == nil {
		return nil
	}
	n := newNode(v)
	joinBefore(it, n)
	return n
}

// Remove removes the element at it and destroys it. it becomes invalid.
func (it *Iter[T]) Remove() {
	s := acquire("remove", it, it)
	if s == nil {
		return
	}
	if it.isEnd() {
		warn("remove", "cannot remove the end iterator")
		return
	}
	unlink(it)
	freeTree(it, s.destroy)
}

// Move moves the element at src to immediately before dest. dest may be in
// another sequence.
func Move[T any](src, dest *Iter[T]) {
	if acquire("move", src, src) == nil || acquire("move", dest, src) == nil {
		return
	}
	if src.isEnd() {
		warn("move", "cannot move the end iterator")
		return
	}
	move(src, dest)
}

func move[T any](src, dest *Iter[T]) {
	if src == dest {
		return
	}
	unlink(src)
	joinBefore(dest, src)
}

// Swap exchanges the positions of the elements at a and b. The elements
// between them keep their order.
func Swap[T any](a, b *Iter[T]) {
	if acquire("swap", a, nil) == nil || acquire("swap", b, nil) == nil {
		return
	}
	if a.isEnd() || b.isEnd() {
		warn("swap", "cannot swap the end iterator")
		return
	}
	if a == b {
		return
	}

	left, right := a, b
	if rankOf(a) > rankOf(b) {
		left, right = b, a
	}
	next := successor(right)

	// ..., left, ..., right, next, ...
	move(right, left)
	move(left, next)
}

// Compare returns -1, 0, or 1 as a is before, at, or after b. Both must
// belong to the same sequence.
func Compare[T any](a, b *Iter[T]) int {
	sa := acquire("compare", a, nil)
	sb := acquire("compare", b, nil)
	if sa == nil || sb == nil {
		return 0
	}
	if sa != sb {
		warn("compare", "iterators belong to different sequences")
		return 0
	}
	return compareRanks(a, b)
}

func compareRanks[T any](a, b *Iter[T]) int {
	pa, pb := rankOf(a), rankOf(b)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	}
	return 0
}

// RangeMidpoint returns the iterator halfway between begin and end.
func RangeMidpoint[T any](begin, end *Iter[T]) *Iter[T] {
	sb := acquire("range_midpoint", begin, nil)
	se := acquire("range_midpoint", end, nil)
	if sb == nil || se == nil {
		return nil
	}
	if sb != se {
		warn("range_midpoint", "iterators belong to different sequences")
		return nil
	}
	bp, ep := rankOf(begin), rankOf(end)
	if ep < bp {
		warn("range_midpoint", "range is inverted")
		return nil
	}
	return atRank(begin, bp+(ep-bp)/2)
}

// MoveRange moves the elements in [begin, end) to immediately before dest.
// begin and end must belong to the same sequence; dest may belong to another
// one. A nil dest removes the range, destroying its elements. The call does
// nothing when dest is begin or end, when the range is empty, or when dest
// lies inside the range.
func MoveRange[T any](dest, begin, end *Iter[T]) {
	src := acquire("move_range", begin, nil)
	if src == nil || acquire("move_range", end, nil) == nil {
		return
	}
	if dest != nil && acquire("move_range", dest, nil) == nil {
		return
	}
	if peekSequence(end) != src {
		warn("move_range", "begin and end belong to different sequences")
		return
	}
	moveRange(dest, begin, end, src)
}

// RemoveRange removes and destroys the elements in [begin, end).
func RemoveRange[T any](begin, end *Iter[T]) {
	MoveRange(nil, begin, end)
}

func moveRange[T any](dest, begin, end *Iter[T], src *Sequence[T]) {
	if dest == begin || dest == end {
		return
	}
	if compareRanks(begin, end) >= 0 {
		return
	}
	if dest != nil && peekSequence(dest) == src &&
		compareRanks(dest, begin) > 0 && compareRanks(dest, end) < 0 {
		return
	}

	head := first(begin)
	cut(begin)
	cut(end)
	if head != begin {
		joinAfter(last(head), end)
	}

	if dest != nil {
		joinBefore(dest, begin)
	} else {
		freeTree(begin, src.destroy)
	}
}

// ForeachRange calls fn for every element in [begin, end). The element
// after the current one is looked up before fn runs, so fn may remove the
// current element or move it elsewhere. fn must not use any other element
// of the sequence.
func ForeachRange[T any](begin, end *Iter[T], fn func(it *Iter[T])) {
	s := acquire("foreach_range", begin, nil)
	if s == nil || acquire("foreach_range", end, nil) == nil {
		return
	}
	if peekSequence(end) != s {
		warn("foreach_range", "begin and end belong to different sequences")
		return
	}
	if fn == nil {
		warn("foreach_range", "nil callback")
		return
	}
	if compareRanks(begin, end) > 0 {
		warn("foreach_range", "range is inverted")
		return
	}

	s.mode = modeVisiting
	defer func() {
		s.mode = modeNormal
		s.current = nil
	}()

	for it := begin; it != end && !it.isEnd(); {
		next := successor(it)
		s.current = it
		fn(it)
		it = next
	}
}
