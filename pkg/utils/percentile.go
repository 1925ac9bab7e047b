package utils

import (
	"time"

	"github.com/benbjohnson/clock"
)

// LatencyTracker tracks operation latencies in a sliding window and reports
// them as durations.
type LatencyTracker struct {
	stats *Stats
}

// NewLatencyTracker creates a new LatencyTracker with a real clock.
func NewLatencyTracker(windowSize time.Duration) *LatencyTracker {
	return NewLatencyTrackerWithClock(windowSize, clock.New())
}

// NewLatencyTrackerWithClock creates a new LatencyTracker with a custom clock.
func NewLatencyTrackerWithClock(windowSize time.Duration, clk clock.Clock) *LatencyTracker {
	return &LatencyTracker{stats: NewStatsWithClock(windowSize, clk)}
}

// Observe records one latency.
func (lt *LatencyTracker) Observe(d time.Duration) {
	lt.stats.Add(d.Nanoseconds())
}

// Percentile returns the latency at percentile p.
func (lt *LatencyTracker) Percentile(p float64) (time.Duration, bool) {
	values, ok := lt.stats.Percentile([]float64{p})
	if !ok {
		return 0, false
	}
	return time.Duration(values[0]), true
}

// Mean returns the average latency in the window.
func (lt *LatencyTracker) Mean() (time.Duration, bool) {
	avg, ok := lt.stats.Average()
	if !ok {
		return 0, false
	}
	return time.Duration(avg), true
}

// Len returns the number of latencies in the window.
func (lt *LatencyTracker) Len() int {
	return lt.stats.Len()
}
