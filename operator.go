package gridreduce

// Operator defines a reduction over values of type T.
//
// Identity stores the neutral element in x. Combine folds y into x; x is
// always the accumulating (left) operand. Combine must be associative but
// need not be commutative.
//
// Operators are copied by value into every thread of a launch, so they
// should be small and free of side effects.
type Operator[T any] interface {
	Identity(x *T)
	Combine(x *T, y T)
}

// identityOf returns the identity element of op.
func identityOf[T any, O Operator[T]](op O) T {
	var x T
	op.Identity(&x)
	return x
}

// Funcs adapts a pair of functions into an Operator, for reductions only
// known at run time. Prefer a dedicated type where possible: calls through
// Funcs are indirect.
type Funcs[T any] struct {
	IdentityFn func() T
	CombineFn  func(x, y T) T
}

// Identity implements Operator.
func (f Funcs[T]) Identity(x *T) {
	*x = f.IdentityFn()
}

// Combine implements Operator.
func (f Funcs[T]) Combine(x *T, y T) {
	*x = f.CombineFn(*x, y)
}
