package playqueue

import (
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func titles(q *Queue) []string {
	var out []string
	for _, e := range q.Entries() {
		out = append(out, e.Title)
	}
	return out
}

func newQueue(t *testing.T, name string, titles ...string) (*Queue, []uuid.UUID) {
	t.Helper()
	q := NewWithClock(name, clock.NewMock())
	ids := make([]uuid.UUID, 0, len(titles))
	for _, title := range titles {
		e := &Entry{Title: title}
		require.NoError(t, q.Add(e))
		ids = append(ids, e.ID)
	}
	return q, ids
}

func TestQueue_AddAssignsIDAndTime(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(time.Hour)
	q := NewWithClock("main", clk)

	e := &Entry{Title: "a"}
	require.NoError(t, q.Add(e))

	require.NotEqual(t, uuid.Nil, e.ID)
	require.Equal(t, clk.Now(), e.AddedAt)
	require.Equal(t, 1, q.Len())
	require.ErrorIs(t, q.Add(e), ErrDuplicate)
}

func TestQueue_AddAtAndPosition(t *testing.T) {
	q, ids := newQueue(t, "main", "a", "c")

	b := &Entry{Title: "b"}
	require.NoError(t, q.AddAt(1, b))
	require.NoError(t, q.AddAt(99, &Entry{Title: "d"}))

	require.Equal(t, []string{"a", "b", "c", "d"}, titles(q))
	pos, err := q.Position(b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, pos)
	pos, err = q.Position(ids[1])
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	_, err = q.Position(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_RemoveAndClear(t *testing.T) {
	q, ids := newQueue(t, "main", "a", "b", "c")

	require.NoError(t, q.Remove(ids[1]))
	require.Equal(t, []string{"a", "c"}, titles(q))
	require.ErrorIs(t, q.Remove(ids[1]), ErrNotFound)

	q.Clear()
	require.Equal(t, 0, q.Len())
	require.Empty(t, q.index)
}

func TestQueue_RemoveIf(t *testing.T) {
	q, _ := newQueue(t, "main", "keep", "drop", "keep", "drop")

	n := q.RemoveIf(func(e Entry) bool { return e.Title == "drop" })

	require.Equal(t, 2, n)
	require.Equal(t, []string{"keep", "keep"}, titles(q))
	require.Len(t, q.index, 2)
}

func TestQueue_MoveTo(t *testing.T) {
	q, ids := newQueue(t, "main", "a", "b", "c", "d")

	require.NoError(t, q.MoveTo(ids[0], 2))
	require.Equal(t, []string{"b", "c", "a", "d"}, titles(q))

	require.NoError(t, q.MoveTo(ids[3], 0))
	require.Equal(t, []string{"d", "b", "c", "a"}, titles(q))

	require.NoError(t, q.MoveTo(ids[1], 3))
	require.Equal(t, []string{"d", "c", "a", "b"}, titles(q))

	require.Error(t, q.MoveTo(ids[1], 4))
}

func TestQueue_Swap(t *testing.T) {
	q, ids := newQueue(t, "main", "A", "B", "C", "D")

	require.NoError(t, q.Swap(ids[0], ids[3]))
	require.Equal(t, []string{"D", "B", "C", "A"}, titles(q))
	require.ErrorIs(t, q.Swap(ids[0], uuid.New()), ErrNotFound)
}

func TestQueue_MoveRangeToOtherQueue(t *testing.T) {
	src, ids := newQueue(t, "src", "A", "B", "C", "D", "E")
	dst, _ := newQueue(t, "dst", "X")

	require.NoError(t, src.MoveRange(1, 3, dst, 1))

	require.Equal(t, []string{"A", "D", "E"}, titles(src))
	require.Equal(t, []string{"X", "B", "C"}, titles(dst))

	// The moved entries now belong to dst.
	_, err := src.Position(ids[1])
	require.ErrorIs(t, err, ErrNotFound)
	pos, err := dst.Position(ids[2])
	require.NoError(t, err)
	require.Equal(t, 2, pos)

	require.NoError(t, dst.Remove(ids[1]))
	require.Equal(t, []string{"X", "C"}, titles(dst))
	require.Len(t, dst.index, 2)
	require.Len(t, src.index, 3)
}

func TestQueue_MoveRangeWithinQueue(t *testing.T) {
	q, _ := newQueue(t, "main", "A", "B", "C", "D", "E")

	require.NoError(t, q.MoveRange(3, 5, q, 0))
	require.Equal(t, []string{"D", "E", "A", "B", "C"}, titles(q))

	// Destination inside the range: nothing moves.
	require.NoError(t, q.MoveRange(0, 3, q, 1))
	require.Equal(t, []string{"D", "E", "A", "B", "C"}, titles(q))

	require.Error(t, q.MoveRange(2, 9, q, 0))
}

func TestQueue_SortByIsStableAndSticky(t *testing.T) {
	q := NewWithClock("main", clock.NewMock())
	for _, e := range []*Entry{
		{Title: "x", Artist: "b", Album: "one", Track: 2},
		{Title: "y", Artist: "a", Album: "two", Track: 1},
		{Title: "z", Artist: "b", Album: "one", Track: 1},
		{Title: "w", Artist: "a", Album: "two", Track: 1},
	} {
		require.NoError(t, q.Add(e))
	}

	q.SortBy(ByArtist)
	require.Equal(t, ByArtist, q.SortKey())
	require.Equal(t, []string{"y", "w", "z", "x"}, titles(q))

	// Add keeps the queue sorted.
	require.NoError(t, q.Add(&Entry{Title: "v", Artist: "a", Album: "zzz"}))
	require.Equal(t, []string{"y", "w", "v", "z", "x"}, titles(q))

	// A positional edit drops the sort key.
	require.NoError(t, q.AddAt(0, &Entry{Title: "u", Artist: "zz"}))
	require.Equal(t, Unsorted, q.SortKey())
}

func TestQueue_UpdateResorts(t *testing.T) {
	q := NewWithClock("main", clock.NewMock())
	var ids []uuid.UUID
	for _, d := range []int{100, 200, 300} {
		e := &Entry{Title: "t", Duration: time.Duration(d) * time.Second}
		require.NoError(t, q.Add(e))
		ids = append(ids, e.ID)
	}
	q.SortBy(ByDuration)

	require.NoError(t, q.Update(ids[0], func(e *Entry) {
		e.Duration = 250 * time.Second
		e.ID = uuid.New()
	}))

	pos, err := q.Position(ids[0])
	require.NoError(t, err)
	require.Equal(t, 1, pos)
	e, err := q.At(1)
	require.NoError(t, err)
	require.Equal(t, ids[0], e.ID)
	require.ErrorIs(t, q.Update(uuid.New(), func(*Entry) {}), ErrNotFound)
}

func TestQueue_InsertSortedAndFind(t *testing.T) {
	q := NewWithClock("main", clock.NewMock())
	q.SortBy(ByTitle)
	for _, title := range []string{"delta", "alpha", "charlie", "alpha"} {
		require.NoError(t, q.InsertSorted(&Entry{Title: title}, ByTitle))
	}
	require.Equal(t, []string{"alpha", "alpha", "charlie", "delta"}, titles(q))

	e, pos, err := q.Find(ByTitle, &Entry{Title: "charlie"})
	require.NoError(t, err)
	require.Equal(t, "charlie", e.Title)
	require.Equal(t, 2, pos)

	first, err := q.At(0)
	require.NoError(t, err)
	e, pos, err = q.Find(ByTitle, &Entry{Title: "alpha"})
	require.NoError(t, err)
	require.Equal(t, 0, pos)
	require.Equal(t, first.ID, e.ID)

	_, _, err = q.Find(ByTitle, &Entry{Title: "bravo"})
	require.ErrorIs(t, err, ErrNotFound)
	_, _, err = q.Find(ByArtist, &Entry{})
	require.ErrorIs(t, err, ErrNotSorted)
}

func TestQueue_Shuffle(t *testing.T) {
	q := NewWithClock("main", clock.NewMock())
	for _, e := range FakeEntries(50, 7) {
		require.NoError(t, q.Add(e))
	}
	before := q.Entries()
	q.SortBy(ByTitle)

	q.Shuffle(rand.New(rand.NewSource(3)))

	require.Equal(t, Unsorted, q.SortKey())
	require.ElementsMatch(t, before, q.Entries())
	for i, e := range q.Entries() {
		pos, err := q.Position(e.ID)
		require.NoError(t, err)
		require.Equal(t, i, pos)
	}
}

func TestQueue_AtOutOfRange(t *testing.T) {
	q, _ := newQueue(t, "main", "a")

	_, err := q.At(1)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = q.At(-1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_Close(t *testing.T) {
	q, _ := newQueue(t, "main", "a", "b")

	q.Close()

	require.Empty(t, q.index)
}

func TestKey_ParseAndString(t *testing.T) {
	for _, k := range []Key{Unsorted, ByTitle, ByArtist, ByAlbum, ByDuration, ByAddedAt} {
		parsed, err := ParseKey(k.String())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}
	_, err := ParseKey("bogus")
	require.Error(t, err)
	require.Equal(t, "Key(42)", Key(42).String())
}

func TestFakeEntries_Deterministic(t *testing.T) {
	a := FakeEntries(5, 11)
	b := FakeEntries(5, 11)

	require.Len(t, a, 5)
	require.Equal(t, a, b)
	for _, e := range a {
		require.NotEqual(t, uuid.Nil, e.ID)
		require.NotEmpty(t, e.Title)
		require.GreaterOrEqual(t, e.Duration, 90*time.Second)
	}
}
