package sequence

// CompareFunc orders two values. It returns a negative number when a sorts
// before b, zero when they are equal, and a positive number otherwise.
type CompareFunc[T any] func(a, b T) int

// IterCompareFunc orders two elements by their iterators. It may read them
// with Value and IsEnd, but must not call anything else on the sequence.
type IterCompareFunc[T any] func(a, b *Iter[T]) int

// byValue lifts cmp to iterators. The end node sorts after everything, so
// cmp never sees it.
func byValue[T any](cmp CompareFunc[T]) IterCompareFunc[T] {
	return func(a, b *Iter[T]) int {
		switch {
		case a.isEnd():
			return 1
		case b.isEnd():
			return -1
		}
		return cmp(a.value, b.value)
	}
}

// Sort sorts the sequence by cmp. The sort is stable.
func (s *Sequence[T]) Sort(cmp CompareFunc[T]) {
	if cmp == nil {
		warn("sort", "nil compare function")
		return
	}
	s.SortIter(byValue(cmp))
}

// SortIter sorts the sequence by an iterator comparator. The sort is stable.
// The elements are moved into a scratch sequence in one step and inserted
// back one at a time, each after every element it compares equal to.
func (s *Sequence[T]) SortIter(cmp IterCompareFunc[T]) {
	if !s.usable("sort") {
		return
	}
	if cmp == nil {
		warn("sort", "nil compare function")
		return
	}

	tmp := New[T](nil)
	moveRange(tmp.end, first(s.end), s.end, s)

	var pending *Iter[T]
	s.mode, tmp.mode = modeReorganizing, modeReorganizing
	defer func() {
		// Put back anything left over if cmp panicked.
		if pending != nil {
			joinBefore(s.end, pending)
		}
		if treeSize(tmp.end) > 1 {
			moveRange(s.end, first(tmp.end), tmp.end, tmp)
		}
		s.mode, tmp.mode = modeNormal, modeNormal
		tmp.Free()
	}()

	for treeSize(tmp.end) > 1 {
		pending = first(tmp.end)
		unlink(pending)
		insertSorted(s.end, pending, s.end, cmp)
		pending = nil
	}
}

// InsertSorted inserts v after every element that does not sort after it,
// which keeps a sorted sequence sorted and equal elements in insertion
// order.
func (s *Sequence[T]) InsertSorted(v T, cmp CompareFunc[T]) *Iter[T] {
	if cmp == nil {
		warn("insert_sorted", "nil compare function")
		return nil
	}
	return s.InsertSortedIter(v, byValue(cmp))
}

// InsertSortedIter is InsertSorted with an iterator comparator.
func (s *Sequence[T]) InsertSortedIter(v T, cmp IterCompareFunc[T]) *Iter[T] {
	if !s.usable("insert_sorted") {
		return nil
	}
	if cmp == nil {
		warn("insert_sorted", "nil compare function")
		return nil
	}

	s.mode = modeReorganizing
	defer func() { s.mode = modeNormal }()

	n := newNode(v)
	insertSorted(s.end, n, s.end, cmp)
	return n
}

// SortChanged moves the element at it to where cmp sorts it, for use after
// the element changed. An element that compares equal to a neighbour stays
// put, so calling SortChanged again without further changes does nothing.
func (it *Iter[T]) SortChanged(cmp CompareFunc[T]) {
	if cmp == nil {
		warn("sort_changed", "nil compare function")
		return
	}
	it.SortChangedIter(byValue(cmp))
}

// SortChangedIter is SortChanged with an iterator comparator.
func (it *Iter[T]) SortChangedIter(cmp IterCompareFunc[T]) {
	s := acquire("sort_changed", it, it)
	if s == nil {
		return
	}
	if it.isEnd() {
		warn("sort_changed", "cannot sort the end iterator")
		return
	}
	if cmp == nil {
		warn("sort_changed", "nil compare function")
		return
	}

	prevMode := s.mode
	s.mode = modeReorganizing
	defer func() { s.mode = prevMode }()

	next := successor(it)
	prev := predecessor(it)
	if prev != it && cmp(prev, it) == 0 {
		return
	}
	if !next.isEnd() && cmp(next, it) == 0 {
		return
	}

	unlink(it)
	insertSorted(s.end, it, s.end, cmp)
}

// Search returns the position where v would be inserted by InsertSorted:
// the first element that sorts strictly after v, or End.
func (s *Sequence[T]) Search(v T, cmp CompareFunc[T]) *Iter[T] {
	if cmp == nil {
		warn("search", "nil compare function")
		return nil
	}
	return s.SearchIter(v, byValue(cmp))
}

// SearchIter is Search with an iterator comparator. The comparator's second
// argument is a detached iterator holding v.
func (s *Sequence[T]) SearchIter(v T, cmp IterCompareFunc[T]) *Iter[T] {
	if !s.usable("search") {
		return nil
	}
	if cmp == nil {
		warn("search", "nil compare function")
		return nil
	}

	s.mode = modeReorganizing
	defer func() { s.mode = modeNormal }()

	probe := newNode(v)
	return findClosest(s.end, probe, s.end, cmp)
}
