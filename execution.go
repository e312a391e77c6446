package gridreduce

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// groupState is shared by the threads of one block for the duration of
// the block's execution.
type groupState struct {
	barrier   *Barrier
	sgSize    int
	subgroups []*subGroup
}

func newGroupState(blockSize, sgSize int) *groupState {
	n := (blockSize + sgSize - 1) / sgSize
	g := &groupState{
		barrier:   NewBarrier(blockSize),
		sgSize:    sgSize,
		subgroups: make([]*subGroup, n),
	}
	for i := range g.subgroups {
		width := sgSize
		if rem := blockSize - i*sgSize; rem < width {
			width = rem
		}
		g.subgroups[i] = newSubGroup(width)
	}
	return g
}

// abort breaks every barrier of the block so no thread stays blocked on a
// peer that failed.
func (g *groupState) abort() {
	g.barrier.Break()
	for _, sg := range g.subgroups {
		sg.barrier.Break()
	}
}

// launchFailure records the first failure of a launch.
type launchFailure struct {
	op     string
	once   sync.Once
	err    error
	failed atomic.Bool
}

func (f *launchFailure) record(r any, format string, args ...any) {
	f.once.Do(func() {
		f.err = NewExecutionError(f.op, "kernel panicked", errors.Wrapf(panicError(r), format, args...))
		f.failed.Store(true)
	})
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Errorf("%v", r)
}

// launch enqueues the execution of thread over every thread of rng.
// newBlock is called once per block, on the worker executing it, before
// the block's threads start; the function it returns is the thread body.
func (q *Queue) launch(op string, rng Range, sgSize int, newBlock func(blockID int) func(it Item)) *Event {
	grid, block := rng.Grid.normalize(), rng.Block.normalize()
	gridSize := grid.Size()

	// Determine parallelism strategy
	numWorkers := q.cfg.MaxParallelism
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	// Each worker processes a contiguous run of blocks
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers
	klog.V(2).Infof("%s: grid=%s block=%s workers=%d blocks/worker=%d sub-group=%d",
		op, grid, block, numWorkers, blocksPerWorker, sgSize)

	return q.Submit(func() error {
		fail := &launchFailure{op: op}
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := min(startBlock+blocksPerWorker, gridSize)
			go func() {
				defer wg.Done()
				for blockID := startBlock; blockID < endBlock && !fail.failed.Load(); blockID++ {
					runBlock(blockID, grid, block, sgSize, newBlock(blockID), fail)
				}
			}()
		}
		wg.Wait()
		return fail.err
	})
}

// runBlock executes all threads of one block concurrently, so they can
// meet at the block's barriers, and returns when every thread is done.
func runBlock(blockID int, grid, block Dim3, sgSize int, thread func(it Item), fail *launchFailure) {
	blockSize := block.Size()
	group := newGroupState(blockSize, sgSize)
	blockIdx := linearTo3D(blockID, grid)

	var wg sync.WaitGroup
	wg.Add(blockSize)
	for local := 0; local < blockSize; local++ {
		it := Item{
			BlockIdx:  blockIdx,
			ThreadIdx: linearTo3D(local, block),
			BlockDim:  block,
			GridDim:   grid,
			group:     group,
			local:     local,
		}
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(barrierBroken); ok {
						return
					}
					fail.record(r, "block %d thread %d", blockID, local)
					group.abort()
				}
			}()
			thread(it)
		}()
	}
	wg.Wait()
}
