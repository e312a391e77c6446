package gridreduce

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runPrimitive launches body over rng with the given sub-group size and
// collects one result per global thread.
func runPrimitive[T any](t *testing.T, rng Range, sgSize int, body func(it Item, scratch []T) T) ([]T, error) {
	t.Helper()
	q := newTestQueue(t, WithMaxParallelism(2))
	results := make([]T, rng.GlobalSize())
	ev := q.launch(t.Name(), rng, sgSize, func(blockID int) func(it Item) {
		scratch := make([]T, rng.Block.Size())
		return func(it Item) {
			results[it.GlobalLinearID()] = body(it, scratch)
		}
	})
	return results, ev.Wait()
}

func label(it Item) string {
	return fmt.Sprintf("%d,", it.LocalLinearID())
}

func TestShiftLeft(t *testing.T) {
	rng := ndRangeOrFail(t, Dim1(32), Dim1(16))
	got, err := runPrimitive(t, rng, 8, func(it Item, _ []int) int {
		return ShiftLeft(it, it.GlobalLinearID(), 3)
	})
	require.NoError(t, err)
	for i, v := range got {
		lane := i % 8
		want := i + 3
		if lane+3 >= 8 {
			want = i
		}
		assert.Equal(t, want, v, "thread %d", i)
	}
}

func TestSubgroupReduce(t *testing.T) {
	rng := ndRangeOrFail(t, Dim1(16), Dim1(16))
	got, err := runPrimitive(t, rng, 8, func(it Item, _ []string) string {
		return SubgroupReduce(it, Concat{}, 4, label(it))
	})
	require.NoError(t, err)
	for start := 0; start < 16; start += 4 {
		var sb strings.Builder
		for l := start; l < start+4; l++ {
			fmt.Fprintf(&sb, "%d,", l)
		}
		assert.Equal(t, sb.String(), got[start], "column starting at lane %d", start)
	}
}

func TestSubgroupReduceInvalidWidth(t *testing.T) {
	rng := ndRangeOrFail(t, Dim1(8), Dim1(8))
	_, err := runPrimitive(t, rng, 8, func(it Item, _ []int) int {
		return SubgroupReduce(it, Sum[int]{}, 3, 1)
	})
	require.Error(t, err)
	assert.True(t, IsExecutionError(err))
	assert.Contains(t, err.Error(), "InvalidArgument")
}

func TestShmemReduce(t *testing.T) {
	rng := ndRangeOrFail(t, Dim1(32), Dim1(32))
	got, err := runPrimitive(t, rng, 4, func(it Item, scratch []string) string {
		v := fmt.Sprintf("s%d,", it.SubGroupID())
		return ShmemReduce(it, Concat{}, 4, scratch, v)
	})
	require.NoError(t, err)
	// 8 sub-groups of 4 lanes; rows of 4 leaders.
	assert.Equal(t, "s0,s1,s2,s3,", got[0])
	assert.Equal(t, "s4,s5,s6,s7,", got[16])
	assert.Equal(t, "s1,", got[5], "non-leaders keep their value")
}

func TestTwoLevelMatchesTree(t *testing.T) {
	rng := ndRangeOrFail(t, Dim1(64), Dim1(64))
	tree, err := runPrimitive(t, rng, 8, func(it Item, scratch []string) string {
		return GroupReduce(it, Concat{}, scratch, label(it))
	})
	require.NoError(t, err)
	twoLevel, err := runPrimitive(t, rng, 8, func(it Item, scratch []string) string {
		v := SubgroupReduce(it, Concat{}, 8, label(it))
		return ShmemReduce(it, Concat{}, it.SubGroupRange(), scratch, v)
	})
	require.NoError(t, err)
	assert.Equal(t, tree[0], twoLevel[0])
}

func TestGroupReduceNonPowerOfTwo(t *testing.T) {
	for _, size := range []int{1, 2, 3, 6, 7, 13, 31} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			rng := ndRangeOrFail(t, Dim1(size), Dim1(size))
			got, err := runPrimitive(t, rng, 1, func(it Item, scratch []int) int {
				return GroupReduce(it, Sum[int]{}, scratch, it.LocalLinearID()+1)
			})
			require.NoError(t, err)
			assert.Equal(t, size*(size+1)/2, got[0])
		})
	}
}

func TestItemIndexing(t *testing.T) {
	rng := ndRangeOrFail(t, Dim3{X: 4, Y: 6}, Dim3{X: 2, Y: 3})
	got, err := runPrimitive(t, rng, 2, func(it Item, _ []Item) Item { return it })
	require.NoError(t, err)
	for i, it := range got {
		assert.Equal(t, i, it.GlobalLinearID())
		id := it.GlobalID()
		assert.Equal(t, i, id.Y*4+id.X)
		assert.Equal(t, id.X, it.Global())
		assert.Equal(t, linearOf(it.ThreadIdx, it.BlockDim), it.LocalLinearID())
		assert.Equal(t, 6, it.LocalLinearRange())
		assert.Equal(t, 3, it.SubGroupRange())
		assert.Equal(t, it.LocalLinearID()/2, it.SubGroupID())
		assert.Equal(t, it.LocalLinearID()%2, it.SubGroupLocalID())
		assert.Equal(t, 2, it.SubGroupSize())
	}
}
