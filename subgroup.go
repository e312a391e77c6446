package gridreduce

import (
	"fmt"
)

// subGroup is a lock-step lane cluster. Lanes exchange values through
// slots; the cluster barrier stands in for the lock-step execution of
// hardware lanes and is never visible to kernels.
type subGroup struct {
	width   int
	barrier *Barrier
	slots   []any
}

func newSubGroup(width int) *subGroup {
	return &subGroup{
		width:   width,
		barrier: NewBarrier(width),
		slots:   make([]any, width),
	}
}

// ShiftLeft returns the value v of the lane delta positions to the right
// of the calling lane in its sub-group. Lanes whose source would fall
// outside the sub-group get their own v back. Every lane of the sub-group
// must call it with the same delta.
func ShiftLeft[T any](it Item, v T, delta int) T {
	sg := it.subGroup()
	lane := it.SubGroupLocalID()
	sg.slots[lane] = v
	sg.barrier.Wait()
	ret := v
	if src := lane + delta; delta >= 0 && src < sg.width {
		ret, _ = sg.slots[src].(T)
	}
	sg.barrier.Wait()
	return ret
}

// SubgroupReduce folds each run of q consecutive lanes of a sub-group onto
// the run's first lane (lanes ≡ 0 mod q) with shifts only, no shared
// scratch and no block barrier. Other lanes get a partial value. Every
// lane of the sub-group must call it. q must divide the sub-group size.
func SubgroupReduce[T any, O Operator[T]](it Item, op O, q int, v T) T {
	width := it.subGroup().width
	if q < 1 || width%q != 0 {
		panic(NewInvalidArgError("SubgroupReduce",
			fmt.Sprintf("column width %d does not divide sub-group size %d", q, width)))
	}
	lane := it.SubGroupLocalID() % q
	for offset := 1; offset < q; offset *= 2 {
		other := ShiftLeft(it, v, offset)
		if lane%(2*offset) == 0 && lane+offset < q {
			op.Combine(&v, other)
		}
	}
	return v
}

// ShmemReduce folds the values held by sub-group leaders (lane 0) across
// runs of p consecutive sub-groups, using scratch (one slot per sub-group)
// and a block barrier between rounds. The result is valid on every leader
// whose sub-group id is a multiple of p. Every thread of the block must
// call it.
func ShmemReduce[T any, O Operator[T]](it Item, op O, p int, scratch []T, v T) T {
	if p < 1 {
		panic(NewInvalidArgError("ShmemReduce", fmt.Sprintf("row width must be positive, got %d", p)))
	}
	sid := it.SubGroupID()
	nsub := it.SubGroupRange()
	leader := it.SubGroupLocalID() == 0
	if leader {
		scratch[sid] = v
	}
	row := sid % p
	for offset := 1; offset < p; offset *= 2 {
		it.Barrier()
		if leader && row%(2*offset) == 0 && row+offset < p && sid+offset < nsub {
			op.Combine(&scratch[sid], scratch[sid+offset])
		}
	}
	if leader {
		return scratch[sid]
	}
	return v
}
