package gridreduce

import (
	"sync"

	"k8s.io/klog/v2"
)

// Queue represents an ordered sequence of operations that execute
// asynchronously. Operations within a queue execute in order, but
// operations in different queues may execute concurrently.
//
// The configuration, including the native reduction strategy, is fixed
// when the queue is created.
type Queue struct {
	device *Device
	cfg    Config

	mu     sync.Mutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
}

// Event tracks the completion of a submitted task.
type Event struct {
	done chan struct{}
	err  error
}

var (
	defaultQueue     *Queue
	defaultQueueOnce sync.Once
)

// DefaultQueue returns the process-wide queue bound to the default device
// and configuration.
func DefaultQueue() *Queue {
	defaultQueueOnce.Do(func() {
		defaultQueue = NewQueue()
	})
	return defaultQueue
}

// NewQueue creates a queue on the default device. Options override the
// configuration derived from the device and environment.
func NewQueue(opts ...Option) *Queue {
	dev := GetDevice()
	cfg := defaultConfig(dev)
	for _, opt := range opts {
		opt(&cfg)
	}
	q := &Queue{
		device: dev,
		cfg:    cfg,
		tasks:  make(chan func(), TaskQueueDepth),
	}
	go q.worker()
	klog.V(1).Infof("gridreduce: new queue on %s: parallelism=%d sub-group=%d native=%s",
		dev.Name, cfg.MaxParallelism, cfg.SubGroupSize, cfg.Native)
	return q
}

// Device returns the device the queue executes on.
func (q *Queue) Device() *Device {
	return q.device
}

// Config returns the configuration the queue was bound with.
func (q *Queue) Config() Config {
	return q.cfg
}

// worker processes tasks for a queue
func (q *Queue) worker() {
	for task := range q.tasks {
		task()
		q.wg.Done()
	}
}

// Submit adds a task to the queue and returns the event signaled when it
// has run. The task's error is reported by Event.Wait.
func (q *Queue) Submit(task func() error) *Event {
	ev := &Event{done: make(chan struct{})}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		ev.err = ErrQueueClosed
		close(ev.done)
		return ev
	}
	q.wg.Add(1)
	q.tasks <- func() {
		ev.err = task()
		close(ev.done)
	}
	return ev
}

// Synchronize waits for all tasks in the queue to complete
func (q *Queue) Synchronize() {
	q.wg.Wait()
}

// Close waits for pending tasks and stops the queue worker. Later
// submissions fail with ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}

// Wait blocks until the task has run and returns its error.
func (e *Event) Wait() error {
	<-e.done
	return e.err
}

// Done reports whether the task has run, without blocking.
func (e *Event) Done() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}
