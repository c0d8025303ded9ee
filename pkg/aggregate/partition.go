package aggregate

import (
	"iter"
	"slices"

	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
)

// Predicate decides which side of a partition an element belongs to.
// Returning an error fails the whole aggregation with a
// ClassificationError.
type Predicate[T any] func(T) (bool, error)

// Match adapts an infallible predicate function to a Predicate.
func Match[T any](f func(T) bool) Predicate[T] {
	return func(v T) (bool, error) {
		return f(v), nil
	}
}

// Partition splits elements into a false and a true side and reduces each
// side with the downstream collector, in a single pass over the input.
//
// Unlike GroupBy, the result always holds both keys: a side no element
// matched still carries the reduction of no elements, such as a zero sum or
// an empty slice. Keys iterate in the order false, true.
//
// The first predicate or collector failure aborts the aggregation; no
// partial result is returned.
func Partition[T, A, R any](elements []T, match Predicate[T], downstream collector.Collector[T, A, R]) (Result[bool, R], error) {
	return PartitionSeq(slices.Values(elements), match, downstream)
}

// PartitionSeq is Partition over an arbitrary sequence. The sequence is
// consumed exactly once and only as far as the first failure.
func PartitionSeq[T, A, R any](elements iter.Seq[T], match Predicate[T], downstream collector.Collector[T, A, R]) (Result[bool, R], error) {
	var zero Result[bool, R]

	accs := map[bool]A{
		false: downstream.Supply(),
		true:  downstream.Supply(),
	}

	index := 0
	for v := range elements {
		side, err := match(v)
		if err != nil {
			return zero, &ClassificationError{Index: index, Err: err}
		}

		acc, err := downstream.Accumulate(accs[side], v)
		if err != nil {
			return zero, &ReductionError{Op: "accumulate", Key: side, Index: index, Err: err}
		}
		accs[side] = acc
		index++
	}

	return finishGroups([]bool{false, true}, accs, downstream)
}

// PartitionElements splits elements into slices for each side. It is
// Partition with a ToSlice downstream collector.
func PartitionElements[T any](elements []T, match Predicate[T]) (Result[bool, []T], error) {
	return Partition(elements, match, collector.ToSlice[T]())
}
