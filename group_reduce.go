package gridreduce

// GroupReduce folds the values of all threads of a block with a binary
// tree over scratch, which must hold at least one slot per thread. Every
// thread of the block must call it. The block's result is returned on
// thread 0; other threads get a partial value.
//
// In the round with offset d, thread li folds scratch[li+d] into
// scratch[li] when li is a multiple of 2d. A barrier precedes every round.
// The accumulating slot is always the left operand, so thread 0 ends up
// with scratch[0] ∘ scratch[1] ∘ … in thread order.
func GroupReduce[T any, O Operator[T]](it Item, op O, scratch []T, v T) T {
	li := it.LocalLinearID()
	n := it.LocalLinearRange()
	scratch[li] = v
	for offset := 1; offset < n; offset *= 2 {
		it.Barrier()
		if li%(2*offset) == 0 && li+offset < n {
			op.Combine(&scratch[li], scratch[li+offset])
		}
	}
	return scratch[li]
}
