package aggregate

import (
	"iter"
	"slices"

	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
)

// Classifier derives the grouping key for an element. Returning an error
// fails the whole aggregation with a ClassificationError.
type Classifier[T any, K comparable] func(T) (K, error)

// Key adapts an infallible key function to a Classifier.
func Key[T any, K comparable](f func(T) K) Classifier[T, K] {
	return func(v T) (K, error) {
		return f(v), nil
	}
}

// GroupBy classifies each element and folds it into the accumulator of its
// group using the downstream collector, in a single pass over the input.
// Keys appear in the result in the order they were first seen. Iteration
// order within a group matches the input order.
//
// The first classifier or collector failure aborts the aggregation; no
// partial result is returned.
func GroupBy[T any, K comparable, A, R any](elements []T, classify Classifier[T, K], downstream collector.Collector[T, A, R]) (Result[K, R], error) {
	return GroupBySeq(slices.Values(elements), classify, downstream)
}

// GroupBySeq is GroupBy over an arbitrary sequence. The sequence is
// consumed exactly once and only as far as the first failure.
func GroupBySeq[T any, K comparable, A, R any](elements iter.Seq[T], classify Classifier[T, K], downstream collector.Collector[T, A, R]) (Result[K, R], error) {
	var zero Result[K, R]

	var order []K
	accs := make(map[K]A)

	index := 0
	for v := range elements {
		key, err := classify(v)
		if err != nil {
			return zero, &ClassificationError{Index: index, Err: err}
		}

		acc, seen := accs[key]
		if !seen {
			acc = downstream.Supply()
			order = append(order, key)
		}

		acc, err = downstream.Accumulate(acc, v)
		if err != nil {
			return zero, &ReductionError{Op: "accumulate", Key: key, Index: index, Err: err}
		}
		accs[key] = acc
		index++
	}

	return finishGroups(order, accs, downstream)
}

// GroupElements groups elements into slices per key. It is GroupBy with a
// ToSlice downstream collector.
func GroupElements[T any, K comparable](elements []T, classify Classifier[T, K]) (Result[K, []T], error) {
	return GroupBy(elements, classify, collector.ToSlice[T]())
}

// finishGroups finishes each accumulator in first-seen key order.
func finishGroups[T any, K comparable, A, R any](order []K, accs map[K]A, downstream collector.Collector[T, A, R]) (Result[K, R], error) {
	values := make(map[K]R, len(order))
	for _, key := range order {
		r, err := downstream.Finish(accs[key])
		if err != nil {
			return Result[K, R]{}, &ReductionError{Op: "finish", Key: key, Index: -1, Err: err}
		}
		values[key] = r
	}
	return Result[K, R]{keys: order, values: values}, nil
}
