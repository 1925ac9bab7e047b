package utils

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pliu/splayseq/pkg/sequence"
)

// Item is a key with its payload.
type Item struct {
	Key   int64
	Value interface{}
}

// SortedList keeps int64 keys with payloads in ascending key order, backed by
// a splay-tree sequence. Duplicate keys are kept in insertion order, so
// Delete always removes the oldest occurrence.
type SortedList struct {
	seq *sequence.Sequence[Item]
}

func NewSortedList() *SortedList {
	return &SortedList{seq: sequence.New[Item](nil)}
}

func byKey(a, b Item) int {
	switch {
	case a.Key < b.Key:
		return -1
	case a.Key > b.Key:
		return 1
	}
	return 0
}

// notBelow sorts every element with a key >= the probe after it, which makes
// Search return the first occurrence of a key.
func notBelow(a, b Item) int {
	if a.Key >= b.Key {
		return 1
	}
	return -1
}

func (sl *SortedList) Len() int {
	return sl.seq.Len()
}

// Insert adds a key occurrence after every existing occurrence of key.
func (sl *SortedList) Insert(key int64, value interface{}) {
	sl.seq.InsertSorted(Item{Key: key, Value: value}, byKey)
}

// Delete removes the oldest occurrence of key. It reports whether one existed.
func (sl *SortedList) Delete(key int64) bool {
	it := sl.lowerBound(key)
	if it.IsEnd() || it.Value().Key != key {
		return false
	}
	it.Remove()
	return true
}

func (sl *SortedList) lowerBound(key int64) *sequence.Iter[Item] {
	return sl.seq.Search(Item{Key: key}, notBelow)
}

// GetAll returns the payloads stored under key in insertion order.
func (sl *SortedList) GetAll(key int64) []interface{} {
	var values []interface{}
	end := sl.seq.Search(Item{Key: key}, byKey)
	sequence.ForeachRange(sl.lowerBound(key), end, func(it *sequence.Iter[Item]) {
		values = append(values, it.Value().Value)
	})
	return values
}

// GetByIndex returns a copy of the item at index.
func (sl *SortedList) GetByIndex(index int) (*Item, bool) {
	if index < 0 || index >= sl.seq.Len() {
		return nil, false
	}
	item := sl.seq.At(index).Value()
	return &item, true
}

// IndexOf returns the index of the first occurrence of key.
func (sl *SortedList) IndexOf(key int64) (int, bool) {
	it := sl.lowerBound(key)
	if it.IsEnd() || it.Value().Key != key {
		return -1, false
	}
	return it.Position(), true
}

// Keys returns all keys in ascending order, including duplicates.
func (sl *SortedList) Keys() []int64 {
	keys := make([]int64, 0, sl.seq.Len())
	for item := range sl.seq.All() {
		keys = append(keys, item.Key)
	}
	return keys
}

// Merge inserts all items from other into this sorted list.
func (sl *SortedList) Merge(other *SortedList) {
	if other == nil || sl == other {
		return
	}
	for _, item := range other.seq.Values() {
		sl.seq.InsertSorted(item, byKey)
	}
}

// Iter yields copies of all items in sorted order.
func (sl *SortedList) Iter() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for item := range sl.seq.All() {
			if !yield(&item) {
				return
			}
		}
	}
}

func (sl *SortedList) String() string {
	var b strings.Builder
	for item := range sl.seq.All() {
		fmt.Fprintf(&b, "{Key: %d, Value: %v} ", item.Key, item.Value)
	}
	return b.String()
}
