package utils

import (
	"github.com/pliu/splayseq/pkg/sequence"
)

// Set is a set that remembers insertion order. Items lists members in the
// order they were first added.
type Set[T comparable] struct {
	index map[T]*sequence.Iter[T]
	order *sequence.Sequence[T]
}

func NewSet[T comparable]() *Set[T] {
	return &Set[T]{
		index: make(map[T]*sequence.Iter[T]),
		order: sequence.New[T](nil),
	}
}

// Add adds item and reports whether it was new. Re-adding keeps the item's
// original place.
func (s *Set[T]) Add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = s.order.Append(item)
	return true
}

// Remove removes item and reports whether it was present.
func (s *Set[T]) Remove(item T) bool {
	it, ok := s.index[item]
	if !ok {
		return false
	}
	delete(s.index, item)
	it.Remove()
	return true
}

func (s *Set[T]) Contains(item T) bool {
	_, ok := s.index[item]
	return ok
}

func (s *Set[T]) Len() int {
	return len(s.index)
}

// Items returns the members in insertion order.
func (s *Set[T]) Items() []T {
	return s.order.Values()
}

// Equals reports whether both sets have the same members, in any order.
func (s *Set[T]) Equals(other *Set[T]) bool {
	if other == nil || len(s.index) != len(other.index) {
		return false
	}
	for item := range s.index {
		if !other.Contains(item) {
			return false
		}
	}
	return true
}
