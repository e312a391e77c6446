package gridreduce

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// MemoryPool accounts for device memory handed out to buffers.
// It tracks the number of allocations, the live bytes and the peak.
type MemoryPool struct {
	mu         sync.Mutex
	numAllocs  int64
	totalAlloc int64
	peakAlloc  int64
}

// MemoryStats is a snapshot of a MemoryPool.
type MemoryStats struct {
	Allocations int64 // Allocations performed since creation
	Allocated   int64 // Live bytes
	Peak        int64 // Highest live bytes observed
}

func (s MemoryStats) String() string {
	return fmt.Sprintf("%d allocations, %s live, %s peak",
		s.Allocations, humanize.Bytes(uint64(s.Allocated)), humanize.Bytes(uint64(s.Peak)))
}

var defaultPool = NewMemoryPool()

// NewMemoryPool creates a new memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{}
}

// DefaultMemoryPool returns the pool reducers allocate their storage from.
func DefaultMemoryPool() *MemoryPool {
	return defaultPool
}

func (mp *MemoryPool) track(bytes int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.numAllocs++
	mp.totalAlloc += bytes
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

func (mp *MemoryPool) untrack(bytes int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.totalAlloc -= bytes
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() MemoryStats {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return MemoryStats{
		Allocations: mp.numAllocs,
		Allocated:   mp.totalAlloc,
		Peak:        mp.peakAlloc,
	}
}

// Buffer is a device-resident array of T. Its length is fixed at
// allocation.
type Buffer[T any] struct {
	data  []T
	bytes int64
	pool  *MemoryPool
}

// NewBuffer allocates n elements of T from pool.
func NewBuffer[T any](pool *MemoryPool, n int) (*Buffer[T], error) {
	if n < 1 {
		return nil, NewInvalidArgError("NewBuffer", fmt.Sprintf("size must be positive, got %d", n))
	}
	var zero T
	if size := int64(unsafe.Sizeof(zero)); size > 0 && int64(n) > math.MaxInt64/size {
		return nil, NewMemoryError("NewBuffer",
			fmt.Sprintf("%d elements of %d bytes exceed the addressable size", n, size), nil)
	}
	return allocBuffer[T](pool, n), nil
}

func allocBuffer[T any](pool *MemoryPool, n int) *Buffer[T] {
	var zero T
	b := &Buffer[T]{
		data:  make([]T, n),
		bytes: int64(n) * int64(unsafe.Sizeof(zero)),
		pool:  pool,
	}
	pool.track(b.bytes)
	return b
}

// Len returns the number of elements.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// Bytes returns the size of the buffer in bytes.
func (b *Buffer[T]) Bytes() int64 {
	return b.bytes
}

// Host returns a host view of the buffer. Writes through the view are
// visible to later launches.
func (b *Buffer[T]) Host() []T {
	return b.data
}

// Release returns the buffer's bytes to the pool accounting. The buffer
// must not be used afterwards. Releasing twice is a no-op.
func (b *Buffer[T]) Release() {
	if b.data == nil {
		return
	}
	b.pool.untrack(b.bytes)
	b.data = nil
}
