// Package playqueue models the play queue of a music player: an ordered list
// of tracks that can be sorted by column, shuffled, edited in place, and have
// runs of tracks dragged into another queue.
package playqueue

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/pliu/splayseq/pkg/metrics"
	"github.com/pliu/splayseq/pkg/sequence"
	"github.com/pliu/splayseq/pkg/utils"
)

var (
	ErrNotFound  = errors.New("entry not found")
	ErrDuplicate = errors.New("entry already queued")
	ErrNotSorted = errors.New("queue is not sorted by that key")
)

// Queue is an ordered list of entries. It is not safe for concurrent use.
type Queue struct {
	name    string
	seq     *sequence.Sequence[*Entry]
	index   map[uuid.UUID]*sequence.Iter[*Entry]
	clock   clock.Clock
	sortKey Key
}

func New(name string) *Queue {
	return NewWithClock(name, clock.New())
}

func NewWithClock(name string, clk clock.Clock) *Queue {
	q := &Queue{
		name:  name,
		index: make(map[uuid.UUID]*sequence.Iter[*Entry]),
		clock: clk,
	}
	q.seq = sequence.New(func(e *Entry) {
		delete(q.index, e.ID)
	})
	return q
}

func (q *Queue) Name() string {
	return q.name
}

// SortKey returns the key the queue is kept sorted by, or Unsorted.
func (q *Queue) SortKey() Key {
	return q.sortKey
}

func (q *Queue) Len() int {
	return q.seq.Len()
}

func (q *Queue) record(op string) {
	metrics.QueueOperationCount.WithLabelValues(q.name, op).Inc()
	metrics.QueueLength.WithLabelValues(q.name).Set(float64(q.seq.Len()))
}

func (q *Queue) prepare(e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, exists := q.index[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.ID)
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = q.clock.Now()
	}
	return nil
}

// Add queues e. A sorted queue places it where its sort key puts it,
// otherwise it goes last. e gets an ID and AddedAt time if it has none.
func (q *Queue) Add(e *Entry) error {
	if err := q.prepare(e); err != nil {
		return err
	}
	if q.sortKey != Unsorted {
		q.index[e.ID] = q.seq.InsertSorted(e, q.sortKey.Compare)
	} else {
		q.index[e.ID] = q.seq.Append(e)
	}
	q.record("add")
	return nil
}

// AddAt queues e before position pos. A pos past the end appends. The queue
// is no longer considered sorted.
func (q *Queue) AddAt(pos int, e *Entry) error {
	if err := q.prepare(e); err != nil {
		return err
	}
	q.index[e.ID] = q.seq.At(pos).InsertBefore(e)
	q.sortKey = Unsorted
	q.record("add_at")
	return nil
}

func (q *Queue) lookup(id uuid.UUID) (*sequence.Iter[*Entry], error) {
	it, ok := q.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, nil
}

func (q *Queue) Remove(id uuid.UUID) error {
	it, err := q.lookup(id)
	if err != nil {
		return err
	}
	it.Remove()
	q.record("remove")
	return nil
}

// RemoveIf removes every entry for which drop returns true and returns how
// many were removed.
func (q *Queue) RemoveIf(drop func(Entry) bool) int {
	removed := 0
	q.seq.Foreach(func(it *sequence.Iter[*Entry]) {
		if drop(*it.Value()) {
			it.Remove()
			removed++
		}
	})
	q.record("remove_if")
	return removed
}

// MoveTo moves the entry id so that it ends up at position pos.
func (q *Queue) MoveTo(id uuid.UUID, pos int) error {
	it, err := q.lookup(id)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= q.seq.Len() {
		return fmt.Errorf("position %d out of range [0, %d)", pos, q.seq.Len())
	}
	dest := q.seq.At(pos)
	if it.Position() < pos {
		dest = dest.Next()
	}
	sequence.Move(it, dest)
	q.sortKey = Unsorted
	q.record("move")
	return nil
}

func (q *Queue) Swap(a, b uuid.UUID) error {
	itA, err := q.lookup(a)
	if err != nil {
		return err
	}
	itB, err := q.lookup(b)
	if err != nil {
		return err
	}
	sequence.Swap(itA, itB)
	q.sortKey = Unsorted
	q.record("swap")
	return nil
}

// MoveRange moves the entries at positions [from, to) into dst, before
// position dstPos of dst. dst may be q itself. Nothing moves if an entry is
// already in dst.
func (q *Queue) MoveRange(from, to int, dst *Queue, dstPos int) error {
	n := q.seq.Len()
	if from < 0 || to > n || from > to {
		return fmt.Errorf("range [%d, %d) out of bounds for %d entries", from, to, n)
	}
	begin, end := q.seq.At(from), q.seq.At(to)

	moved := utils.NewSet[uuid.UUID]()
	sequence.ForeachRange(begin, end, func(it *sequence.Iter[*Entry]) {
		moved.Add(it.Value().ID)
	})
	if dst != q {
		for _, id := range moved.Items() {
			if _, exists := dst.index[id]; exists {
				return fmt.Errorf("%w in %s: %s", ErrDuplicate, dst.name, id)
			}
		}
	}

	sequence.MoveRange(dst.seq.At(dstPos), begin, end)

	if dst != q {
		for _, id := range moved.Items() {
			dst.index[id] = q.index[id]
			delete(q.index, id)
		}
		dst.sortKey = Unsorted
		dst.record("move_range_in")
	} else {
		q.sortKey = Unsorted
	}
	q.record("move_range")
	log.Debug().Str("queue", q.name).Str("dst", dst.name).Int("entries", moved.Len()).Msg("moved range")
	return nil
}

// Clear removes every entry.
func (q *Queue) Clear() {
	sequence.RemoveRange(q.seq.Begin(), q.seq.End())
	q.record("clear")
}

// SortBy sorts the queue by key and keeps it sorted by key on Add and
// Update. Entries with equal keys keep their order. Unsorted only forgets
// the sort key.
func (q *Queue) SortBy(key Key) {
	q.sortKey = key
	if key != Unsorted {
		q.seq.Sort(key.Compare)
	}
	q.record("sort")
}

// InsertSorted queues e after every entry that does not sort after it by
// key. The queue should already be sorted by key.
func (q *Queue) InsertSorted(e *Entry, key Key) error {
	if err := q.prepare(e); err != nil {
		return err
	}
	q.index[e.ID] = q.seq.InsertSorted(e, key.Compare)
	q.record("insert_sorted")
	return nil
}

// Update calls fn on the entry id and moves the entry if the edit changed
// where the queue's sort key puts it. fn must not change the ID.
func (q *Queue) Update(id uuid.UUID, fn func(*Entry)) error {
	it, err := q.lookup(id)
	if err != nil {
		return err
	}
	e := it.Value()
	fn(e)
	e.ID = id
	if q.sortKey != Unsorted {
		it.SortChanged(q.sortKey.Compare)
	}
	q.record("update")
	return nil
}

// Shuffle puts the entries in a random order drawn from r.
func (q *Queue) Shuffle(r *rand.Rand) {
	for i := q.seq.Len() - 1; i > 0; i-- {
		if j := r.Intn(i + 1); j != i {
			sequence.Swap(q.seq.At(i), q.seq.At(j))
		}
	}
	q.sortKey = Unsorted
	q.record("shuffle")
}

// Position returns the 0-based position of the entry id.
func (q *Queue) Position(id uuid.UUID) (int, error) {
	it, err := q.lookup(id)
	if err != nil {
		return -1, err
	}
	return it.Position(), nil
}

// At returns a copy of the entry at pos.
func (q *Queue) At(pos int) (Entry, error) {
	it := q.seq.At(pos)
	if it == nil || it.IsEnd() {
		return Entry{}, fmt.Errorf("%w: no entry at position %d", ErrNotFound, pos)
	}
	return *it.Value(), nil
}

// Entries returns copies of all entries in queue order.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, 0, q.seq.Len())
	for e := range q.seq.All() {
		out = append(out, *e)
	}
	return out
}

// Find returns the first entry that key considers equal to probe, and its
// position. The queue must be sorted by key.
func (q *Queue) Find(key Key, probe *Entry) (Entry, int, error) {
	if key == Unsorted || key != q.sortKey {
		return Entry{}, -1, fmt.Errorf("%w: %s", ErrNotSorted, key)
	}
	it := q.seq.Search(probe, func(a, b *Entry) int {
		if key.Compare(a, b) >= 0 {
			return 1
		}
		return -1
	})
	if it.IsEnd() || key.Compare(it.Value(), probe) != 0 {
		return Entry{}, -1, ErrNotFound
	}
	return *it.Value(), it.Position(), nil
}

// Close removes every entry and releases the queue.
func (q *Queue) Close() {
	q.seq.Free()
	metrics.QueueLength.DeleteLabelValues(q.name)
}
