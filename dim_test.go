package gridreduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDim3Size(t *testing.T) {
	cases := []struct {
		dim  Dim3
		size int
	}{
		{Dim3{X: 256}, 256},
		{Dim1(7), 7},
		{Dim3{X: 2, Y: 3}, 6},
		{Dim3{X: 2, Y: 3, Z: 4}, 24},
		{Dim3{}, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.size, tc.dim.Size(), "%+v", tc.dim)
	}
	assert.Equal(t, "(256,1,1)", Dim3{X: 256}.String())
}

func TestLinearRoundTrip(t *testing.T) {
	dim := Dim3{X: 3, Y: 4, Z: 5}
	for i := 0; i < dim.Size(); i++ {
		idx := linearTo3D(i, dim)
		assert.Equal(t, i, linearOf(idx, dim))
	}
	assert.Equal(t, Dim3{X: 1, Y: 2, Z: 0}, linearTo3D(7, dim))
}

func TestNewNDRange(t *testing.T) {
	rng, err := NewNDRange(Dim1(4096), Dim1(32))
	require.NoError(t, err)
	assert.Equal(t, 128, rng.GroupCount())
	assert.Equal(t, 4096, rng.GlobalSize())
	assert.Equal(t, Dim1(32), rng.Block)

	rng, err = NewNDRange(Dim3{X: 8, Y: 6}, Dim3{X: 4, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, Dim3{X: 2, Y: 2, Z: 1}, rng.Grid)

	for _, tc := range []struct {
		name          string
		global, local Dim3
	}{
		{"empty global", Dim1(0), Dim1(32)},
		{"empty local", Dim1(64), Dim1(0)},
		{"negative", Dim1(-64), Dim1(32)},
		{"not divisible", Dim1(100), Dim1(32)},
		{"not divisible in Y", Dim3{X: 4, Y: 5}, Dim3{X: 2, Y: 2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNDRange(tc.global, tc.local)
			assert.True(t, IsInvalidArgError(err), "got %v", err)
		})
	}
}
