package gridreduce

import (
	"fmt"
)

// Dim3 represents 3D dimensions for grid and block configurations.
// This matches CUDA's dim3 structure for kernel launch parameters: a zero
// Y or Z extent is read as 1, so Dim3{X: 256} describes 256 elements.
type Dim3 struct {
	X, Y, Z int
}

// Dim1 returns the one-dimensional extent n.
func Dim1(n int) Dim3 {
	return Dim3{X: n, Y: 1, Z: 1}
}

// normalize fills unset Y and Z extents with 1.
func (d Dim3) normalize() Dim3 {
	if d.Y == 0 {
		d.Y = 1
	}
	if d.Z == 0 {
		d.Z = 1
	}
	return d
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	d = d.normalize()
	return d.X * d.Y * d.Z
}

// valid reports whether every extent is at least 1.
func (d Dim3) valid() bool {
	d = d.normalize()
	return d.X >= 1 && d.Y >= 1 && d.Z >= 1
}

func (d Dim3) String() string {
	d = d.normalize()
	return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z)
}

// linearTo3D converts a linear index to 3D coordinates, X fastest.
func linearTo3D(linear int, dim Dim3) Dim3 {
	dim = dim.normalize()
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

// linearOf is the inverse of linearTo3D.
func linearOf(idx, dim Dim3) int {
	dim = dim.normalize()
	return (idx.Z*dim.Y+idx.Y)*dim.X + idx.X
}

// Range is an explicit decomposition of a launch: a grid of blocks, each
// of the same block size.
type Range struct {
	Grid  Dim3 // Number of blocks per axis
	Block Dim3 // Threads per block per axis
}

// NewNDRange builds the decomposition of a global extent into blocks of
// the local extent. Every global extent must be a positive multiple of the
// matching local extent.
func NewNDRange(global, local Dim3) (Range, error) {
	global, local = global.normalize(), local.normalize()
	if !global.valid() || !local.valid() {
		return Range{}, NewInvalidArgError("NewNDRange",
			fmt.Sprintf("extents must be positive: global=%s local=%s", global, local))
	}
	if global.X%local.X != 0 || global.Y%local.Y != 0 || global.Z%local.Z != 0 {
		return Range{}, NewInvalidArgError("NewNDRange",
			fmt.Sprintf("global range %s is not divisible by local range %s", global, local))
	}
	return Range{
		Grid:  Dim3{X: global.X / local.X, Y: global.Y / local.Y, Z: global.Z / local.Z},
		Block: local,
	}, nil
}

// GroupCount returns the number of blocks in the launch.
func (r Range) GroupCount() int {
	return r.Grid.Size()
}

// GlobalSize returns the number of work items in the launch.
func (r Range) GlobalSize() int {
	return r.Grid.Size() * r.Block.Size()
}

// validate checks the block geometry. The group count is checked by
// Reducer.Realloc, so a zero-block grid surfaces from there.
func (r Range) validate(op string) error {
	if !r.Block.valid() {
		return NewInvalidArgError(op, fmt.Sprintf("block size must be positive: %s", r.Block))
	}
	if r.Block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError(op,
			fmt.Sprintf("block size %d exceeds %d threads", r.Block.Size(), MaxThreadsPerBlock))
	}
	g := r.Grid.normalize()
	if g.X < 0 || g.Y < 0 || g.Z < 0 {
		return NewInvalidArgError(op, fmt.Sprintf("grid extents must not be negative: %s", r.Grid))
	}
	return nil
}

// Item identifies a thread's position within the execution hierarchy.
// It provides the same indexing semantics as CUDA's built-in variables:
// blockIdx, threadIdx, blockDim, and gridDim, plus access to the block's
// barrier and the thread's sub-group.
type Item struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid

	group *groupState
	local int
}

// Global returns the global thread index along X
func (it Item) Global() int {
	return it.BlockIdx.X*it.BlockDim.X + it.ThreadIdx.X
}

// GlobalID returns the global coordinates of the thread.
func (it Item) GlobalID() Dim3 {
	return Dim3{
		X: it.BlockIdx.X*it.BlockDim.X + it.ThreadIdx.X,
		Y: it.BlockIdx.Y*it.BlockDim.Y + it.ThreadIdx.Y,
		Z: it.BlockIdx.Z*it.BlockDim.Z + it.ThreadIdx.Z,
	}
}

// GlobalLinearID returns the row-major (X fastest) linear index of the
// thread within the global range.
func (it Item) GlobalLinearID() int {
	b, g := it.BlockDim.normalize(), it.GridDim.normalize()
	global := Dim3{X: b.X * g.X, Y: b.Y * g.Y, Z: b.Z * g.Z}
	return linearOf(it.GlobalID(), global)
}

// LocalLinearID returns the linear index of the thread within its block.
func (it Item) LocalLinearID() int {
	return it.local
}

// LocalLinearRange returns the number of threads in the block.
func (it Item) LocalLinearRange() int {
	return it.BlockDim.Size()
}

// GroupLinearID returns the linear index of the thread's block.
func (it Item) GroupLinearID() int {
	return linearOf(it.BlockIdx, it.GridDim)
}

// Barrier blocks until every thread of the block has reached it.
func (it Item) Barrier() {
	it.group.barrier.Wait()
}

// SubGroupSize returns the width of the thread's lane cluster.
func (it Item) SubGroupSize() int {
	return it.group.sgSize
}

// SubGroupID returns the index of the thread's lane cluster in the block.
func (it Item) SubGroupID() int {
	return it.local / it.group.sgSize
}

// SubGroupLocalID returns the lane of the thread within its cluster.
func (it Item) SubGroupLocalID() int {
	return it.local % it.group.sgSize
}

// SubGroupRange returns the number of lane clusters in the block.
func (it Item) SubGroupRange() int {
	return len(it.group.subgroups)
}

func (it Item) subGroup() *subGroup {
	return it.group.subgroups[it.SubGroupID()]
}
