package gridreduce

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdering(t *testing.T) {
	q := newTestQueue(t)
	var mu sync.Mutex
	var order []int
	var events []*Event
	for i := 0; i < 50; i++ {
		events = append(events, q.Submit(func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		}))
	}
	q.Synchronize()
	for _, ev := range events {
		assert.True(t, ev.Done())
		assert.NoError(t, ev.Wait())
	}
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestQueueTaskError(t *testing.T) {
	q := newTestQueue(t)
	want := errors.New("task failed")
	ev := q.Submit(func() error { return want })
	assert.Equal(t, want, ev.Wait())
}

func TestQueueClose(t *testing.T) {
	q := NewQueue()
	ran := false
	ev := q.Submit(func() error {
		ran = true
		return nil
	})
	q.Close()
	assert.True(t, ran, "Close waits for pending tasks")
	assert.NoError(t, ev.Wait())

	ev = q.Submit(func() error { return nil })
	assert.Equal(t, ErrQueueClosed, ev.Wait())
	q.Close()

	_, err := ParallelReduceRange(q, 10, NewReducer[int](Sum[int]{}), func(int) int { return 1 })
	assert.NoError(t, err, "argument checks pass; the failure is on the event")
}

func TestDefaultQueue(t *testing.T) {
	q := DefaultQueue()
	assert.Same(t, q, DefaultQueue())
	assert.Same(t, GetDevice(), q.Device())
}
