package gridreduce

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number is the set of types Sum and Prod reduce.
type Number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// Sum adds values; its identity is 0.
type Sum[T Number] struct{}

func (Sum[T]) Identity(x *T)     { *x = 0 }
func (Sum[T]) Combine(x *T, y T) { *x += y }

// Prod multiplies values; its identity is 1.
type Prod[T Number] struct{}

func (Prod[T]) Identity(x *T)     { *x = 1 }
func (Prod[T]) Combine(x *T, y T) { *x *= y }

// Min keeps the smallest value. Bound is the identity and must be the
// greatest value of the domain being reduced (e.g. math.MaxInt, +Inf).
type Min[T constraints.Ordered] struct {
	Bound T
}

func (m Min[T]) Identity(x *T) { *x = m.Bound }
func (Min[T]) Combine(x *T, y T) {
	if y < *x {
		*x = y
	}
}

// Max keeps the largest value. Bound is the identity and must be the
// smallest value of the domain being reduced (e.g. math.MinInt, -Inf).
type Max[T constraints.Ordered] struct {
	Bound T
}

func (m Max[T]) Identity(x *T) { *x = m.Bound }
func (Max[T]) Combine(x *T, y T) {
	if y > *x {
		*x = y
	}
}

// Concat concatenates strings. It is associative but not commutative, so
// its result exposes the combine order.
type Concat struct{}

func (Concat) Identity(x *string)          { *x = "" }
func (Concat) Combine(x *string, y string) { *x += y }

// Stats aggregates the count, sum, minimum and maximum of a set of ints.
type Stats struct {
	Count int
	Sum   int
	Min   int
	Max   int
}

// NewStats returns the aggregate of the single value v.
func NewStats(v int) Stats {
	return Stats{Count: 1, Sum: v, Min: v, Max: v}
}

// StatsOp reduces Stats values.
type StatsOp struct{}

// Identity is the aggregate of the empty set.
func (StatsOp) Identity(x *Stats) {
	*x = Stats{Min: math.MaxInt, Max: math.MinInt}
}

// Combine merges y into x.
func (StatsOp) Combine(x *Stats, y Stats) {
	x.Count += y.Count
	x.Sum += y.Sum
	if y.Min < x.Min {
		x.Min = y.Min
	}
	if y.Max > x.Max {
		x.Max = y.Max
	}
}
