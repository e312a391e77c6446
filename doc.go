// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gridreduce provides parallel reductions for a grid/block/thread
// execution model running on the CPU.
//
// A launch covers a grid of blocks; the threads of a block can meet at a
// block barrier and are further split into lock-step sub-groups that
// exchange values with shifts. A reduction is described by an Operator (an
// identity and an associative, not necessarily commutative, combine) and a
// kernel returning one value per work item:
//
//	q := gridreduce.NewQueue()
//	defer q.Close()
//
//	red := gridreduce.NewReducer[int](gridreduce.Sum[int]{})
//	rng, _ := gridreduce.NewNDRange(gridreduce.Dim1(4096), gridreduce.Dim1(32))
//	_, err := gridreduce.ParallelReduce(q, rng, red, func(it gridreduce.Item) int {
//		return 1
//	})
//	total := red.Get() // 4096
//
// Each block folds its threads with a binary tree and writes one partial
// result into the Reducer; Get folds the partial results in block order.
// The combine order is fixed, so non-commutative operators give
// deterministic results.
//
// Flat ranges without a decomposition go through ParallelReduceRange,
// which uses the queue's native single-pass reduction (see
// NativeReduction). Building with the gridreduce_nonative tag selects the
// single-group fallback by default.
package gridreduce
