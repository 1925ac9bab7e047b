package utils

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestLatencyTracker_BasicPercentiles(t *testing.T) {
	mockClock := clock.NewMock()
	lt := NewLatencyTrackerWithClock(10*time.Second, mockClock)

	_, ok := lt.Percentile(50)
	require.False(t, ok)
	_, ok = lt.Mean()
	require.False(t, ok)

	// Add 100 values from 1us to 100us
	for i := 1; i <= 100; i++ {
		lt.Observe(time.Duration(i) * time.Microsecond)
	}

	p50, ok := lt.Percentile(50)
	require.True(t, ok)
	require.Equal(t, 50*time.Microsecond, p50, "p50 should be 50us")

	p99, ok := lt.Percentile(99)
	require.True(t, ok)
	require.Equal(t, 99*time.Microsecond, p99, "p99 should be 99us")

	mean, ok := lt.Mean()
	require.True(t, ok)
	require.Equal(t, 50500*time.Nanosecond, mean)

	_, ok = lt.Percentile(101)
	require.False(t, ok)
}

func TestLatencyTracker_SlidingWindow(t *testing.T) {
	windowSize := 1 * time.Second
	mockClock := clock.NewMock()
	lt := NewLatencyTrackerWithClock(windowSize, mockClock)

	for i := 1; i <= 100; i++ {
		lt.Observe(time.Duration(i))
	}
	require.Equal(t, 100, lt.Len())

	// Expire the first set
	mockClock.Add(windowSize + time.Millisecond)
	for i := 101; i <= 200; i++ {
		lt.Observe(time.Duration(i))
	}
	require.Equal(t, 100, lt.Len())

	p99, ok := lt.Percentile(99)
	require.True(t, ok)
	require.Equal(t, time.Duration(199), p99)
}
