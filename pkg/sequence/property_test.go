package sequence

import (
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// model mirrors a Sequence with a plain slice.
type model struct {
	seq  *Sequence[int]
	vals []int
}

func (m *model) insert(pos, v int) {
	m.vals = slices.Insert(m.vals, pos, v)
}

func (m *model) remove(pos int) int {
	v := m.vals[pos]
	m.vals = slices.Delete(m.vals, pos, pos+1)
	return v
}

func bucket(a, b int) int {
	return a%10 - b%10
}

func TestSequence_MatchesSliceModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		destroyed := map[int]int{}
		destroy := func(v int) { destroyed[v]++ }
		models := []*model{{seq: New(destroy)}, {seq: New(destroy)}}
		next := 0
		fresh := func() int {
			next++
			return next
		}
		var removed []int

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			m := models[rapid.IntRange(0, 1).Draw(t, "seq")]
			n := len(m.vals)

			switch rapid.SampledFrom([]string{
				"append", "prepend", "insert", "remove", "move", "swap",
				"move_range", "remove_range", "sort", "insert_sorted", "sort_changed",
			}).Draw(t, "op") {
			case "append":
				v := fresh()
				m.seq.Append(v)
				m.vals = append(m.vals, v)
			case "prepend":
				v := fresh()
				m.seq.Prepend(v)
				m.insert(0, v)
			case "insert":
				pos := rapid.IntRange(0, n).Draw(t, "pos")
				v := fresh()
				m.seq.At(pos).InsertBefore(v)
				m.insert(pos, v)
			case "remove":
				if n == 0 {
					continue
				}
				pos := rapid.IntRange(0, n-1).Draw(t, "pos")
				m.seq.At(pos).Remove()
				removed = append(removed, m.remove(pos))
			case "move":
				if n == 0 {
					continue
				}
				from := rapid.IntRange(0, n-1).Draw(t, "from")
				to := rapid.IntRange(0, n).Draw(t, "to")
				Move(m.seq.At(from), m.seq.At(to))
				if from == to {
					continue
				}
				v := m.remove(from)
				if to > from {
					to--
				}
				m.insert(to, v)
			case "swap":
				if n == 0 {
					continue
				}
				a := rapid.IntRange(0, n-1).Draw(t, "a")
				b := rapid.IntRange(0, n-1).Draw(t, "b")
				Swap(m.seq.At(a), m.seq.At(b))
				m.vals[a], m.vals[b] = m.vals[b], m.vals[a]
			case "move_range":
				dst := models[rapid.IntRange(0, 1).Draw(t, "dst")]
				begin := rapid.IntRange(0, n).Draw(t, "begin")
				end := rapid.IntRange(begin, n).Draw(t, "end")
				at := rapid.IntRange(0, len(dst.vals)).Draw(t, "at")
				MoveRange(dst.seq.At(at), m.seq.At(begin), m.seq.At(end))

				if begin == end {
					continue
				}
				if dst == m && at >= begin && at <= end {
					continue
				}
				chunk := slices.Clone(m.vals[begin:end])
				m.vals = slices.Delete(m.vals, begin, end)
				if dst == m && at > end {
					at -= end - begin
				}
				dst.vals = slices.Insert(dst.vals, at, chunk...)
			case "remove_range":
				begin := rapid.IntRange(0, n).Draw(t, "begin")
				end := rapid.IntRange(begin, n).Draw(t, "end")
				RemoveRange(m.seq.At(begin), m.seq.At(end))
				removed = append(removed, m.vals[begin:end]...)
				m.vals = slices.Delete(m.vals, begin, end)
			case "sort":
				m.seq.Sort(bucket)
				sort.SliceStable(m.vals, func(i, j int) bool {
					return bucket(m.vals[i], m.vals[j]) < 0
				})
			case "insert_sorted":
				m.seq.Sort(bucket)
				sort.SliceStable(m.vals, func(i, j int) bool {
					return bucket(m.vals[i], m.vals[j]) < 0
				})
				v := fresh()
				m.seq.InsertSorted(v, bucket)
				pos := sort.Search(len(m.vals), func(i int) bool {
					return bucket(m.vals[i], v) > 0
				})
				m.insert(pos, v)
			case "sort_changed":
				if n == 0 {
					continue
				}
				m.seq.Sort(bucket)
				sort.SliceStable(m.vals, func(i, j int) bool {
					return bucket(m.vals[i], m.vals[j]) < 0
				})
				pos := rapid.IntRange(0, n-1).Draw(t, "pos")
				v := fresh()
				it := m.seq.At(pos)
				removed = append(removed, m.vals[pos])
				it.Set(v)
				it.SortChanged(bucket)

				m.vals[pos] = v
				stays := (pos > 0 && bucket(m.vals[pos-1], v) == 0) ||
					(pos+1 < n && bucket(m.vals[pos+1], v) == 0)
				if !stays {
					m.remove(pos)
					m.insert(sort.Search(len(m.vals), func(i int) bool {
						return bucket(m.vals[i], v) > 0
					}), v)
				}

				// A second call with nothing changed leaves it in place.
				settled := it.Position()
				it.SortChanged(bucket)
				require.Equal(t, settled, it.Position())
			}

			for _, mm := range models {
				require.Equal(t, len(mm.vals), mm.seq.Len())
				if len(mm.vals) == 0 {
					require.Empty(t, mm.seq.Values())
				} else {
					require.Equal(t, mm.vals, mm.seq.Values())
				}
				require.NoError(t, mm.seq.Check())
				if len(mm.vals) > 0 {
					pos := rapid.IntRange(0, len(mm.vals)-1).Draw(t, "probe")
					require.Equal(t, pos, mm.seq.At(pos).Position())
				}
			}
		}

		require.Len(t, destroyed, len(removed))
		for _, v := range removed {
			require.Equal(t, 1, destroyed[v])
		}
	})
}
