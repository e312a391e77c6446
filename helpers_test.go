package gridreduce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestQueue creates a queue closed at the end of the test.
func newTestQueue(t testing.TB, opts ...Option) *Queue {
	t.Helper()
	q := NewQueue(opts...)
	t.Cleanup(q.Close)
	return q
}

// ndRangeOrFail builds an nd-range and fails the test if unsuccessful
func ndRangeOrFail(t testing.TB, global, local Dim3) Range {
	t.Helper()
	rng, err := NewNDRange(global, local)
	require.NoError(t, err)
	return rng
}

// waitOrFail waits for an event and fails the test if the task failed
func waitOrFail(t testing.TB, ev *Event, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, ev.Wait())
}

// statsOf computes the expected aggregate of value over [0, n) serially.
func statsOf(n int, value func(int) Stats) Stats {
	var want Stats
	StatsOp{}.Identity(&want)
	for i := 0; i < n; i++ {
		StatsOp{}.Combine(&want, value(i))
	}
	return want
}

func scenarioValue(i int) Stats {
	return NewStats(i*12345%4792 + 101)
}
