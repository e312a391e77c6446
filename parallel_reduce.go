package gridreduce

import (
	"fmt"

	"k8s.io/klog/v2"
)

// Kernel computes the value of one work item of an explicit decomposition.
// It must be a pure function of the item's position.
type Kernel[T any] func(it Item) T

// RangeKernel computes the value of work item id of a flat range.
// It must be a pure function of id.
type RangeKernel[T any] func(id int) T

// ParallelReduce launches kernel over every thread of rng and replaces the
// contents of red with one partial result per block, each the tree
// reduction (GroupReduce) of the block's values. red.Get() then yields the
// reduction over the whole launch.
//
// Argument errors are reported before anything is enqueued and leave red
// unchanged; kernel failures are reported by the returned event and by
// red.Wait.
func ParallelReduce[T any, O Operator[T]](q *Queue, rng Range, red *Reducer[T, O], kernel Kernel[T]) (*Event, error) {
	const opName = "ParallelReduce"
	if err := rng.validate(opName); err != nil {
		return nil, err
	}
	if err := red.Realloc(rng.GroupCount()); err != nil {
		return nil, err
	}
	out := red.Accessor()
	op := red.op
	blockSize := rng.Block.Size()
	sgSize, _ := q.subGroupSizeFor(blockSize)

	ev := q.launch(opName, rng, sgSize, func(blockID int) func(it Item) {
		scratch := make([]T, blockSize)
		return func(it Item) {
			v := GroupReduce(it, op, scratch, kernel(it))
			if it.LocalLinearID() == 0 {
				out.Write(blockID, v)
			}
		}
	})
	red.bind(ev)
	return ev, nil
}

// ParallelReduceSubgroups is ParallelReduce with the two-level block
// reduction: each sub-group first folds its lanes with shifts
// (SubgroupReduce), then the sub-group leaders fold across the block
// (ShmemReduce). The result is identical to ParallelReduce.
//
// The queue's sub-group size is used when it divides the block size;
// otherwise every lane forms its own sub-group and the launch reduces
// through ShmemReduce alone.
func ParallelReduceSubgroups[T any, O Operator[T]](q *Queue, rng Range, red *Reducer[T, O], kernel Kernel[T]) (*Event, error) {
	const opName = "ParallelReduceSubgroups"
	if err := rng.validate(opName); err != nil {
		return nil, err
	}
	if err := red.Realloc(rng.GroupCount()); err != nil {
		return nil, err
	}
	out := red.Accessor()
	op := red.op
	blockSize := rng.Block.Size()
	sgSize, ok := q.subGroupSizeFor(blockSize)
	if !ok {
		klog.Warningf("%s: block size %d is not a multiple of sub-group size %d, using sub-groups of 1",
			opName, blockSize, q.cfg.SubGroupSize)
	}
	nsub := blockSize / sgSize

	ev := q.launch(opName, rng, sgSize, func(blockID int) func(it Item) {
		scratch := make([]T, nsub)
		return func(it Item) {
			v := SubgroupReduce(it, op, sgSize, kernel(it))
			v = ShmemReduce(it, op, nsub, scratch, v)
			if it.LocalLinearID() == 0 {
				out.Write(blockID, v)
			}
		}
	})
	red.bind(ev)
	return ev, nil
}

// ParallelReduceRange reduces kernel over the flat range [0, n) into red,
// leaving a single partial result. The queue's native reduction strategy
// decides how the range is executed; every strategy folds in index order
// and produces the same value. n == 0 yields the identity.
func ParallelReduceRange[T any, O Operator[T]](q *Queue, n int, red *Reducer[T, O], kernel RangeKernel[T]) (*Event, error) {
	const opName = "ParallelReduceRange"
	if n < 0 {
		return nil, NewInvalidArgError(opName, fmt.Sprintf("range must not be negative, got %d", n))
	}
	if err := red.Realloc(1); err != nil {
		return nil, err
	}
	out := red.Accessor()
	slot := red.buf.data
	op := red.op
	workers := q.cfg.MaxParallelism
	kind := q.cfg.Native
	klog.V(2).Infof("%s: n=%d native=%s workers=%d", opName, n, kind, workers)

	ev := q.Submit(func() error {
		fail := &launchFailure{op: opName}
		switch kind {
		case NativeIdentityPair:
			out.Write(0, reduceIdentityPair(workers, n, identityOf[T](op), op, kernel, fail))
		case NativePreseeded:
			op.Identity(&slot[0])
			reducePreseeded(workers, n, &slot[0], op, kernel, fail)
		default:
			op.Identity(&slot[0])
			reduceOneGroup(n, &slot[0], op, kernel, fail)
		}
		return fail.err
	})
	red.bind(ev)
	return ev, nil
}

// subGroupSizeFor returns the sub-group size of a launch with the given
// block size, and false when the configured size had to be replaced by 1.
func (q *Queue) subGroupSizeFor(blockSize int) (int, bool) {
	sgSize := q.cfg.SubGroupSize
	if sgSize < 1 || blockSize%sgSize != 0 {
		return 1, sgSize == 1
	}
	return sgSize, true
}
