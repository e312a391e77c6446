package gridreduce

import (
	"sync"
)

// NativeReduction names the shape of the single-pass reduction a queue
// uses for flat ranges. It is chosen once, when the queue is created.
type NativeReduction int

const (
	// NativeNone means there is no native reduction: flat ranges run as a
	// single group accumulating into one slot.
	NativeNone NativeReduction = iota

	// NativeIdentityPair passes the identity value alongside the combine
	// operation; the result is written to slot 0.
	NativeIdentityPair

	// NativePreseeded accumulates onto slot 0, which must hold the
	// identity when the reduction starts.
	NativePreseeded
)

func (k NativeReduction) String() string {
	switch k {
	case NativeNone:
		return "none"
	case NativeIdentityPair:
		return "identity-pair"
	case NativePreseeded:
		return "preseeded"
	default:
		return "unknown"
	}
}

// reduceIdentityPair reduces kernel over [0, n) starting from identity.
func reduceIdentityPair[T any, O Operator[T]](workers, n int, identity T, op O, kernel RangeKernel[T], fail *launchFailure) T {
	acc := identity
	mergeChunks(&acc, op, foldChunks(workers, n, identity, op, kernel, fail), fail)
	return acc
}

// reducePreseeded reduces kernel over [0, n) onto *acc.
func reducePreseeded[T any, O Operator[T]](workers, n int, acc *T, op O, kernel RangeKernel[T], fail *launchFailure) {
	mergeChunks(acc, op, foldChunks(workers, n, identityOf[T](op), op, kernel, fail), fail)
}

// mergeChunks combines the chunk results onto *acc in chunk order.
func mergeChunks[T any, O Operator[T]](acc *T, op O, partials []T, fail *launchFailure) {
	defer func() {
		if r := recover(); r != nil {
			fail.record(r, "merging %d chunk partials", len(partials))
		}
	}()
	for _, p := range partials {
		op.Combine(acc, p)
	}
}

// reduceOneGroup accumulates kernel over [0, n) onto *acc in index order on
// the calling goroutine.
func reduceOneGroup[T any, O Operator[T]](n int, acc *T, op O, kernel RangeKernel[T], fail *launchFailure) {
	defer func() {
		if r := recover(); r != nil {
			fail.record(r, "work items [0,%d)", n)
		}
	}()
	for i := 0; i < n; i++ {
		op.Combine(acc, kernel(i))
	}
}

// foldChunks splits [0, n) into at most workers contiguous chunks, folds
// each chunk left to right from init on its own goroutine and returns the
// chunk results in chunk order.
func foldChunks[T any, O Operator[T]](workers, n int, init T, op O, kernel RangeKernel[T], fail *launchFailure) []T {
	if n <= 0 {
		return nil
	}
	workers = max(min(workers, n), 1)
	chunk := (n + workers - 1) / workers
	numChunks := (n + chunk - 1) / chunk
	partials := make([]T, numChunks)

	var wg sync.WaitGroup
	wg.Add(numChunks)
	for c := 0; c < numChunks; c++ {
		lo := c * chunk
		hi := min(lo+chunk, n)
		go func(op O) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fail.record(r, "work items [%d,%d)", lo, hi)
				}
			}()
			acc := init
			for i := lo; i < hi; i++ {
				op.Combine(&acc, kernel(i))
			}
			partials[c] = acc
		}(op)
	}
	wg.Wait()
	return partials
}
