package utils

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/pliu/splayseq/pkg/sequence"
)

// Stats keeps the values added within the last windowSize and summarizes
// them. values orders them for percentiles; window keeps them in arrival
// order so the oldest can be expired from the front.
type Stats struct {
	mu         sync.Mutex
	values     *SortedList
	window     *sequence.Sequence[measurement]
	windowSize time.Duration
	clock      clock.Clock
	sum        int64
}

type measurement struct {
	timestamp time.Time
	value     int64
}

func byTimestamp(a, b measurement) int {
	return a.timestamp.Compare(b.timestamp)
}

func NewStats(windowSize time.Duration) *Stats {
	return NewStatsWithClock(windowSize, clock.New())
}

func NewStatsWithClock(windowSize time.Duration, clk clock.Clock) *Stats {
	return &Stats{
		values:     NewSortedList(),
		window:     sequence.New[measurement](nil),
		windowSize: windowSize,
		clock:      clk,
	}
}

func (s *Stats) Add(value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.values.Insert(value, nil)
	s.window.Append(measurement{timestamp: now, value: value})
	s.sum += value
	s.expire(now)
}

func (s *Stats) Average() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.values.Len()
	if count == 0 {
		return 0, false
	}
	return float64(s.sum) / float64(count), true
}

// Percentile returns the value at each of percentiles, nearest-rank rounded
// down. Every percentile must be within [0, 100].
func (s *Stats) Percentile(percentiles []float64) ([]int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(percentiles) == 0 {
		return nil, false
	}
	count := s.values.Len()
	if count == 0 {
		return nil, false
	}

	results := make([]int64, 0, len(percentiles))
	for _, p := range percentiles {
		if p < 0 || p > 100 {
			return nil, false
		}
		item, ok := s.values.GetByIndex(int(float64(count-1) * (p / 100.0)))
		if !ok {
			return nil, false
		}
		results = append(results, item.Key)
	}
	return results, true
}

func (s *Stats) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Len()
}

// Values returns the values in the window in ascending order.
func (s *Stats) Values() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Keys()
}

// Oldest returns the arrival time of the oldest value still in the window.
func (s *Stats) Oldest() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.window.Begin()
	if it.IsEnd() {
		return time.Time{}, false
	}
	return it.Value().timestamp, true
}

// Merge adds every value in other's window to s, keeping their arrival
// times, then expires what is too old for s. other is unchanged.
func (s *Stats) Merge(other *Stats) {
	if other == nil || s == other {
		return
	}

	other.mu.Lock()
	incoming := other.window.Values()
	other.mu.Unlock()
	if len(incoming) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range incoming {
		s.values.Insert(m.value, nil)
		s.sum += m.value
		// Ties go after the values s already had.
		s.window.InsertSorted(m, byTimestamp)
	}
	s.expire(s.clock.Now())
}

// expire drops values that arrived more than windowSize before now.
func (s *Stats) expire(now time.Time) {
	for it := s.window.Begin(); !it.IsEnd(); it = s.window.Begin() {
		m := it.Value()
		if now.Sub(m.timestamp) <= s.windowSize {
			return
		}
		s.values.Delete(m.value)
		s.sum -= m.value
		it.Remove()
	}
}
