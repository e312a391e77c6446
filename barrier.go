package gridreduce

import (
	"sync"
)

// barrierBroken is the panic value raised in threads waiting on a barrier
// that was broken by a failing peer.
type barrierBroken struct{}

// Barrier is a reusable cyclic barrier for a fixed number of participants.
//
// It uses sync.Cond to coordinate arrivals: the last participant of a
// generation advances the generation and wakes everybody.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	gen     uint64
	broken  bool
}

// NewBarrier creates a barrier for n participants. n < 1 is treated as 1.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		n = 1
	}
	b := &Barrier{parties: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all participants have called Wait for the current
// generation. It panics with barrierBroken if the barrier is broken while
// waiting or before arriving.
func (b *Barrier) Wait() {
	b.mu.Lock()
	if b.broken {
		b.mu.Unlock()
		panic(barrierBroken{})
	}
	gen := b.gen
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.gen && !b.broken {
		b.cond.Wait()
	}
	broken := gen == b.gen
	b.mu.Unlock()
	if broken {
		panic(barrierBroken{})
	}
}

// Break releases every waiting participant and makes later calls to Wait
// panic. It is used when one participant fails and will never arrive.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broken = true
	b.cond.Broadcast()
}

// Generation returns how many times the barrier has been passed.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}
