package gridreduce

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// Reducer holds the per-block partial results of a reduction and folds
// them into the final value.
//
// Storage only grows: Realloc to a size within the current capacity keeps
// the existing storage, so a Reducer reused across launches with varying
// block counts stops allocating once it has seen the largest one.
//
// A Reducer is used from a single host goroutine. It must not be
// reallocated while a launch writing to it is in flight.
type Reducer[T any, O Operator[T]] struct {
	op      O
	buf     *Buffer[T]
	ngrp    int
	allocs  int
	pending *Event
}

// NewReducer creates an empty Reducer: capacity 1, length 0, slot 0 seeded
// with the identity.
func NewReducer[T any, O Operator[T]](op O) *Reducer[T, O] {
	r := &Reducer[T, O]{op: op}
	r.grow(1)
	return r
}

// NewReducerSize creates a Reducer with ngrp slots, slot 0 seeded with the
// identity.
func NewReducerSize[T any, O Operator[T]](op O, ngrp int) (*Reducer[T, O], error) {
	if ngrp < 1 {
		return nil, NewInvalidArgError("NewReducerSize", fmt.Sprintf("group count must be at least 1, got %d", ngrp))
	}
	r := &Reducer[T, O]{op: op}
	r.grow(ngrp)
	r.ngrp = ngrp
	return r, nil
}

// grow replaces the storage with n fresh slots and seeds slot 0.
func (r *Reducer[T, O]) grow(n int) {
	if r.buf != nil {
		r.buf.Release()
	}
	r.buf = allocBuffer[T](defaultPool, n)
	r.allocs++
	r.seed()
	klog.V(2).Infof("gridreduce: reducer storage grown to %d slots (%s)", n, humanize.Bytes(uint64(r.buf.Bytes())))
}

// seed stores the identity in slot 0.
func (r *Reducer[T, O]) seed() {
	r.op.Identity(&r.buf.data[0])
}

// Realloc sets the number of partial results to ngrp. Storage is replaced
// (and slot 0 re-seeded) only when ngrp exceeds the capacity; otherwise
// only the length changes and slot contents are left as they were.
// On error the Reducer is unchanged.
func (r *Reducer[T, O]) Realloc(ngrp int) error {
	if ngrp < 1 {
		return NewInvalidArgError("Realloc", fmt.Sprintf("group count must be at least 1, got %d", ngrp))
	}
	if ngrp > r.buf.Len() {
		r.grow(ngrp)
	}
	r.ngrp = ngrp
	return nil
}

// Len returns the number of partial results of the last launch.
func (r *Reducer[T, O]) Len() int {
	return r.ngrp
}

// Cap returns the number of slots allocated.
func (r *Reducer[T, O]) Cap() int {
	return r.buf.Len()
}

// Allocations returns how many times storage has been allocated.
func (r *Reducer[T, O]) Allocations() int {
	return r.allocs
}

// Operator returns a copy of the reduction operator.
func (r *Reducer[T, O]) Operator() O {
	return r.op
}

// Accessor returns the write-only view launches store partial results
// through.
func (r *Reducer[T, O]) Accessor() Accessor[T] {
	return Accessor[T]{data: r.buf.data[:r.ngrp]}
}

// bind records the launch that fills the Reducer.
func (r *Reducer[T, O]) bind(ev *Event) {
	r.pending = ev
}

// Wait blocks until the last launch bound to the Reducer has completed and
// returns its error.
func (r *Reducer[T, O]) Wait() error {
	if r.pending == nil {
		return nil
	}
	return r.pending.Wait()
}

// Get waits for the last launch and folds the partial results in
// ascending slot order: slot[0] combined with slot[1], then slot[2], and
// so on. An empty Reducer yields the identity. Get does not modify the
// Reducer and can be called repeatedly.
//
// Launch failures are not returned here, only logged; use Wait.
func (r *Reducer[T, O]) Get() T {
	if err := r.Wait(); err != nil {
		klog.Warningf("gridreduce: Reducer.Get folds the partials of a failed launch: %v", err)
	}
	if r.ngrp == 0 {
		return identityOf[T](r.op)
	}
	slots := r.buf.data
	ret := slots[0]
	for i := 1; i < r.ngrp; i++ {
		r.op.Combine(&ret, slots[i])
	}
	return ret
}

// Accessor is a write-only view of a Reducer's slots.
type Accessor[T any] struct {
	data []T
}

// Write stores v in slot i.
func (a Accessor[T]) Write(i int, v T) {
	a.data[i] = v
}

// Len returns the number of writable slots.
func (a Accessor[T]) Len() int {
	return len(a.data)
}
