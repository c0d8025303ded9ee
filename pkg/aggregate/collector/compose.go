package collector

// Mapping adapts a collector of U values into a collector of T values by
// transforming each element before it reaches the downstream collector.
// Merge support of the downstream collector is preserved.
func Mapping[T, U, A, R any](transform func(T) U, downstream Collector[U, A, R]) Collector[T, A, R] {
	accumulate := func(acc A, v T) (A, error) {
		return downstream.Accumulate(acc, transform(v))
	}
	if m, ok := AsMerging(downstream); ok {
		return NewMerging[T, A, R](downstream.Supply, accumulate, m.Merge, downstream.Finish)
	}
	return New[T, A, R](downstream.Supply, accumulate, downstream.Finish)
}

// Filtering drops elements that do not match keep before they reach the
// downstream collector. Merge support of the downstream collector is
// preserved.
func Filtering[T, A, R any](keep func(T) bool, downstream Collector[T, A, R]) Collector[T, A, R] {
	accumulate := func(acc A, v T) (A, error) {
		if !keep(v) {
			return acc, nil
		}
		return downstream.Accumulate(acc, v)
	}
	if m, ok := AsMerging(downstream); ok {
		return NewMerging[T, A, R](downstream.Supply, accumulate, m.Merge, downstream.Finish)
	}
	return New[T, A, R](downstream.Supply, accumulate, downstream.Finish)
}

// AndThen applies an additional finisher to the result of a collector.
// Merge support of the wrapped collector is preserved.
func AndThen[T, A, R, S any](c Collector[T, A, R], finisher func(R) (S, error)) Collector[T, A, S] {
	finish := func(acc A) (S, error) {
		r, err := c.Finish(acc)
		if err != nil {
			var zero S
			return zero, err
		}
		return finisher(r)
	}
	if m, ok := AsMerging(c); ok {
		return NewMerging[T, A, S](c.Supply, c.Accumulate, m.Merge, finish)
	}
	return New[T, A, S](c.Supply, c.Accumulate, finish)
}
