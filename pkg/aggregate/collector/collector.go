package collector

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotMergeable is returned when accumulators of a collector cannot be
// merged, for example when a collector built with New is used in a parallel
// aggregation.
var ErrNotMergeable = errors.New("collector does not support merging")

// Collector describes a mutable reduction: elements are folded one at a time
// into an accumulator, and the accumulator is transformed into a final result.
//
// T is the element type, A the accumulator type, and R the result type.
// Implementations must return a fresh, independent accumulator from every
// Supply call so that concurrent reductions never share state.
type Collector[T, A, R any] interface {
	// Supply returns a new accumulator holding the seed value.
	Supply() A

	// Accumulate folds value into acc and returns the updated accumulator.
	// Returning an error aborts the enclosing aggregation.
	Accumulate(acc A, value T) (A, error)

	// Finish transforms the accumulator into the final result.
	Finish(acc A) (R, error)
}

// MergeCollector is a Collector whose accumulators can additionally be
// merged pairwise. Merging is what allows a reduction to be split across
// shards and recombined, so only merge-capable collectors may be used with
// parallel aggregations.
type MergeCollector[T, A, R any] interface {
	Collector[T, A, R]

	// Merge combines two independently built accumulators. The left
	// accumulator always comes from an earlier portion of the input
	// than the right one.
	Merge(a, b A) (A, error)
}

// funcCollector adapts plain functions to the Collector interface.
type funcCollector[T, A, R any] struct {
	supply     func() A
	accumulate func(A, T) (A, error)
	finish     func(A) (R, error)
}

// mergeFuncCollector extends funcCollector with a merge function.
type mergeFuncCollector[T, A, R any] struct {
	funcCollector[T, A, R]
	merge func(A, A) (A, error)
}

// New creates a Collector from a seed supplier, a fold function, and an
// optional finisher. A nil finish returns the accumulator unchanged, which
// requires A and R to be the same type at runtime.
func New[T, A, R any](supply func() A, accumulate func(A, T) (A, error), finish func(A) (R, error)) Collector[T, A, R] {
	return funcCollector[T, A, R]{
		supply:     supply,
		accumulate: accumulate,
		finish:     finish,
	}
}

// NewMerging creates a MergeCollector from a seed supplier, a fold function,
// a pairwise merge function, and an optional finisher.
func NewMerging[T, A, R any](supply func() A, accumulate func(A, T) (A, error), merge func(A, A) (A, error), finish func(A) (R, error)) MergeCollector[T, A, R] {
	return mergeFuncCollector[T, A, R]{
		funcCollector: funcCollector[T, A, R]{
			supply:     supply,
			accumulate: accumulate,
			finish:     finish,
		},
		merge: merge,
	}
}

func (fc funcCollector[T, A, R]) Supply() A {
	return fc.supply()
}

func (fc funcCollector[T, A, R]) Accumulate(acc A, value T) (A, error) {
	return fc.accumulate(acc, value)
}

func (fc funcCollector[T, A, R]) Finish(acc A) (R, error) {
	if fc.finish == nil {
		r, ok := any(acc).(R)
		if !ok {
			var zero R
			return zero, fmt.Errorf("collector finish: accumulator %T is not a %T", acc, zero)
		}
		return r, nil
	}
	return fc.finish(acc)
}

func (mc mergeFuncCollector[T, A, R]) Merge(a, b A) (A, error) {
	if mc.merge == nil {
		var zero A
		return zero, ErrNotMergeable
	}
	return mc.merge(a, b)
}

// AsMerging reports whether c supports merging, returning the merge-capable
// view when it does.
func AsMerging[T, A, R any](c Collector[T, A, R]) (MergeCollector[T, A, R], bool) {
	mc, ok := c.(MergeCollector[T, A, R])
	return mc, ok
}

// Optional holds a value that may be absent, such as the result of reducing
// an empty group with MinBy or MaxBy.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool {
	return o.present
}

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// String renders the Optional for display.
func (o Optional[T]) String() string {
	if !o.present {
		return "none"
	}
	return fmt.Sprintf("%v", o.value)
}

// Number constrains the numeric types accepted by Summing.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Mean is the running state of an Averaging reduction.
type Mean struct {
	Sum   float64
	Count int64
}

// Value returns the mean, or NaN when nothing was counted.
func (m Mean) Value() float64 {
	if m.Count == 0 {
		return math.NaN()
	}
	return m.Sum / float64(m.Count)
}
