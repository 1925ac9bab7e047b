package bench

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pliu/splayseq/pkg/sequence"
)

var operations = map[string]func(r *Runner) error{
	"append":        (*Runner).opAppend,
	"prepend":       (*Runner).opPrepend,
	"insert":        (*Runner).opInsert,
	"remove":        (*Runner).opRemove,
	"move":          (*Runner).opMove,
	"swap":          (*Runner).opSwap,
	"move_range":    (*Runner).opMoveRange,
	"remove_range":  (*Runner).opRemoveRange,
	"sort":          (*Runner).opSort,
	"insert_sorted": (*Runner).opInsertSorted,
	"sort_changed":  (*Runner).opSortChanged,
	"search":        (*Runner).opSearch,
	"at":            (*Runner).opAt,
	"position":      (*Runner).opPosition,
}

// OperationNames lists every operation a bench run can apply.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Runner) modelInsert(pos int, vals ...int) {
	if r.verifying() {
		r.model = slices.Insert(r.model, pos, vals...)
	}
}

func (r *Runner) modelRemove(begin, end int) []int {
	if !r.verifying() {
		return nil
	}
	removed := slices.Clone(r.model[begin:end])
	r.model = slices.Delete(r.model, begin, end)
	return removed
}

// upperBound is the model position InsertSorted would pick for v.
func (r *Runner) upperBound(v int) int {
	return sort.Search(len(r.model), func(i int) bool {
		return byBucket(r.model[i], v) > 0
	})
}

func (r *Runner) mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrVerification, fmt.Sprintf(format, args...))
}

func (r *Runner) opAppend() error {
	v := r.fresh()
	r.timed("append", func() { r.seq.Append(v) })
	r.modelInsert(len(r.model), v)
	r.sorted = false
	return nil
}

func (r *Runner) opPrepend() error {
	v := r.fresh()
	r.timed("prepend", func() { r.seq.Prepend(v) })
	r.modelInsert(0, v)
	r.sorted = false
	return nil
}

func (r *Runner) opInsert() error {
	pos := r.rng.Intn(r.seq.Len() + 1)
	v := r.fresh()
	it := r.seq.At(pos)
	r.timed("insert", func() { it.InsertBefore(v) })
	r.modelInsert(pos, v)
	r.sorted = false
	return nil
}

func (r *Runner) opRemove() error {
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	pos := r.rng.Intn(n)
	it := r.seq.At(pos)
	r.timed("remove", func() { it.Remove() })
	r.modelRemove(pos, pos+1)
	return nil
}

func (r *Runner) opMove() error {
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	from, to := r.rng.Intn(n), r.rng.Intn(n+1)
	src, dest := r.seq.At(from), r.seq.At(to)
	r.timed("move", func() { sequence.Move(src, dest) })
	if from != to {
		moved := r.modelRemove(from, from+1)
		if to > from {
			to--
		}
		r.modelInsert(to, moved...)
	}
	r.sorted = false
	return nil
}

func (r *Runner) opSwap() error {
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	a, b := r.rng.Intn(n), r.rng.Intn(n)
	itA, itB := r.seq.At(a), r.seq.At(b)
	r.timed("swap", func() { sequence.Swap(itA, itB) })
	if r.verifying() {
		r.model[a], r.model[b] = r.model[b], r.model[a]
	}
	r.sorted = false
	return nil
}

// opMoveRange moves a random range out to the scratch sequence and back in
// at a random position.
func (r *Runner) opMoveRange() error {
	n := r.seq.Len()
	begin := r.rng.Intn(n + 1)
	end := begin + r.rng.Intn(n-begin+1)
	at := r.rng.Intn(n - (end - begin) + 1)
	itBegin, itEnd := r.seq.At(begin), r.seq.At(end)
	r.timed("move_range", func() {
		sequence.MoveRange(r.aux.End(), itBegin, itEnd)
		sequence.MoveRange(r.seq.At(at), r.aux.Begin(), r.aux.End())
	})

	r.modelInsert(at, r.modelRemove(begin, end)...)
	if begin != end {
		r.sorted = false
	}
	return nil
}

func (r *Runner) opRemoveRange() error {
	n := r.seq.Len()
	begin := r.rng.Intn(n + 1)
	end := begin + r.rng.Intn(min(n-begin, n/10+1)+1)
	itBegin, itEnd := r.seq.At(begin), r.seq.At(end)
	r.timed("remove_range", func() { sequence.RemoveRange(itBegin, itEnd) })
	r.modelRemove(begin, end)
	return nil
}

func (r *Runner) opSort() error {
	r.timed("sort", func() { r.seq.Sort(byBucket) })
	if r.verifying() {
		slices.SortStableFunc(r.model, byBucket)
	}
	r.sorted = true
	return nil
}

// ensureSorted sorts the sequence if an unsorted-breaking operation ran
// since the last sort. The operations that follow need sorted input.
func (r *Runner) ensureSorted() error {
	if r.sorted {
		return nil
	}
	return r.opSort()
}

func (r *Runner) opInsertSorted() error {
	if err := r.ensureSorted(); err != nil {
		return err
	}
	v := r.fresh()
	var it *sequence.Iter[int]
	r.timed("insert_sorted", func() { it = r.seq.InsertSorted(v, byBucket) })
	if r.verifying() {
		pos := r.upperBound(v)
		r.modelInsert(pos, v)
		if got := it.Position(); got != pos {
			return r.mismatch("insert_sorted placed %d at %d, model at %d", v, got, pos)
		}
	}
	return nil
}

func (r *Runner) opSortChanged() error {
	if err := r.ensureSorted(); err != nil {
		return err
	}
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	pos := r.rng.Intn(n)
	v := r.fresh()
	it := r.seq.At(pos)
	it.Set(v)
	r.timed("sort_changed", func() { it.SortChanged(byBucket) })

	if !r.verifying() {
		return nil
	}
	r.model[pos] = v
	if pos > 0 && byBucket(r.model[pos-1], v) == 0 {
		return nil
	}
	if pos+1 < n && byBucket(r.model[pos+1], v) == 0 {
		return nil
	}
	r.modelRemove(pos, pos+1)
	r.modelInsert(r.upperBound(v), v)
	return nil
}

func (r *Runner) opSearch() error {
	if err := r.ensureSorted(); err != nil {
		return err
	}
	probe := r.rng.Intn(bucketSize)
	var it *sequence.Iter[int]
	r.timed("search", func() { it = r.seq.Search(probe, byBucket) })
	if r.verifying() {
		if got, want := it.Position(), r.upperBound(probe); got != want {
			return r.mismatch("search for %d found %d, model %d", probe, got, want)
		}
	}
	return nil
}

func (r *Runner) opAt() error {
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	pos := r.rng.Intn(n)
	var it *sequence.Iter[int]
	r.timed("at", func() { it = r.seq.At(pos) })
	if r.verifying() {
		if got, want := it.Value(), r.model[pos]; got != want {
			return r.mismatch("at %d holds %d, model %d", pos, got, want)
		}
	}
	return nil
}

func (r *Runner) opPosition() error {
	n := r.seq.Len()
	if n == 0 {
		return nil
	}
	pos := r.rng.Intn(n)
	it := r.seq.At(pos)
	var got int
	r.timed("position", func() { got = it.Position() })
	if got != pos {
		return r.mismatch("element at %d reports position %d", pos, got)
	}
	return nil
}
