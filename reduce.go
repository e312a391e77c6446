package gridreduce

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Reduction operators for statistics commonly computed over kernel output:
// positions of extrema and running moments.

// Indexed pairs a value with the index of the work item it came from.
// Index -1 marks the identity.
type Indexed[T any] struct {
	Index int
	Value T
}

// ArgMax keeps the largest value and its index; on ties the lowest index
// wins, so the result does not depend on the combine order. Bound must be
// the smallest value of the domain. NaNs are not ordered and must not be
// reduced.
type ArgMax[T constraints.Ordered] struct {
	Bound T
}

func (m ArgMax[T]) Identity(x *Indexed[T]) {
	*x = Indexed[T]{Index: -1, Value: m.Bound}
}

func (ArgMax[T]) Combine(x *Indexed[T], y Indexed[T]) {
	if y.Index < 0 {
		return
	}
	if x.Index < 0 || y.Value > x.Value || (y.Value == x.Value && y.Index < x.Index) {
		*x = y
	}
}

// ArgMin keeps the smallest value and its index; on ties the lowest index
// wins. Bound must be the greatest value of the domain.
type ArgMin[T constraints.Ordered] struct {
	Bound T
}

func (m ArgMin[T]) Identity(x *Indexed[T]) {
	*x = Indexed[T]{Index: -1, Value: m.Bound}
}

func (ArgMin[T]) Combine(x *Indexed[T], y Indexed[T]) {
	if y.Index < 0 {
		return
	}
	if x.Index < 0 || y.Value < x.Value || (y.Value == x.Value && y.Index < x.Index) {
		*x = y
	}
}

// Moments holds the count, mean and sum of squared deviations of a set of
// samples, in the form Welford's online algorithm maintains.
type Moments struct {
	N    int
	Mean float64
	M2   float64
}

// Sample returns the moments of the single sample v.
func Sample(v float64) Moments {
	return Moments{N: 1, Mean: v}
}

// Variance returns the sample variance, 0 for fewer than two samples.
func (m Moments) Variance() float64 {
	if m.N < 2 {
		return 0
	}
	return m.M2 / float64(m.N-1)
}

// StdDev returns the sample standard deviation.
func (m Moments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// MomentsOp merges Moments with the pairwise update of Chan et al., so
// partial moments of blocks combine without revisiting samples.
// It is associative up to floating point rounding.
type MomentsOp struct{}

func (MomentsOp) Identity(x *Moments) { *x = Moments{} }

func (MomentsOp) Combine(x *Moments, y Moments) {
	if y.N == 0 {
		return
	}
	if x.N == 0 {
		*x = y
		return
	}
	n := x.N + y.N
	delta := y.Mean - x.Mean
	x.Mean += delta * float64(y.N) / float64(n)
	x.M2 += y.M2 + delta*delta*float64(x.N)*float64(y.N)/float64(n)
	x.N = n
}
