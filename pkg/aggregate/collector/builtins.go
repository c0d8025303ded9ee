package collector

import (
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned by ToMap when two elements map to the same key.
var ErrDuplicateKey = errors.New("duplicate key")

// ToSlice collects elements into a slice in encounter order.
func ToSlice[T any]() MergeCollector[T, []T, []T] {
	return NewMerging[T, []T, []T](
		func() []T { return []T{} },
		func(acc []T, v T) ([]T, error) { return append(acc, v), nil },
		func(a, b []T) ([]T, error) { return append(a, b...), nil },
		nil,
	)
}

// ToSet collects distinct elements into a set.
func ToSet[T comparable]() MergeCollector[T, map[T]struct{}, map[T]struct{}] {
	return NewMerging[T, map[T]struct{}, map[T]struct{}](
		func() map[T]struct{} { return make(map[T]struct{}) },
		func(acc map[T]struct{}, v T) (map[T]struct{}, error) {
			acc[v] = struct{}{}
			return acc, nil
		},
		func(a, b map[T]struct{}) (map[T]struct{}, error) {
			for v := range b {
				a[v] = struct{}{}
			}
			return a, nil
		},
		nil,
	)
}

// ToMap collects elements into a map using the given key and value
// extractors. A second element with an already seen key fails the
// reduction with ErrDuplicateKey.
func ToMap[T any, K comparable, V any](key func(T) K, value func(T) V) MergeCollector[T, map[K]V, map[K]V] {
	return NewMerging[T, map[K]V, map[K]V](
		func() map[K]V { return make(map[K]V) },
		func(acc map[K]V, v T) (map[K]V, error) {
			k := key(v)
			if _, exists := acc[k]; exists {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, k)
			}
			acc[k] = value(v)
			return acc, nil
		},
		func(a, b map[K]V) (map[K]V, error) {
			for k, v := range b {
				if _, exists := a[k]; exists {
					return nil, fmt.Errorf("%w: %v", ErrDuplicateKey, k)
				}
				a[k] = v
			}
			return a, nil
		},
		nil,
	)
}

// Counting counts elements.
func Counting[T any]() MergeCollector[T, int64, int64] {
	return NewMerging[T, int64, int64](
		func() int64 { return 0 },
		func(acc int64, _ T) (int64, error) { return acc + 1, nil },
		func(a, b int64) (int64, error) { return a + b, nil },
		nil,
	)
}

// Summing sums the numeric values extracted from elements.
func Summing[T any, N Number](f func(T) N) MergeCollector[T, N, N] {
	return NewMerging[T, N, N](
		func() N { var zero N; return zero },
		func(acc N, v T) (N, error) { return acc + f(v), nil },
		func(a, b N) (N, error) { return a + b, nil },
		nil,
	)
}

// Averaging computes the arithmetic mean of the values extracted from
// elements. Sums accumulate in float64 even for integer inputs, and the
// mean of no elements is NaN.
func Averaging[T any, N Number](f func(T) N) MergeCollector[T, Mean, float64] {
	return NewMerging[T, Mean, float64](
		func() Mean { return Mean{} },
		func(acc Mean, v T) (Mean, error) {
			acc.Sum += float64(f(v))
			acc.Count++
			return acc, nil
		},
		func(a, b Mean) (Mean, error) {
			return Mean{Sum: a.Sum + b.Sum, Count: a.Count + b.Count}, nil
		},
		func(acc Mean) (float64, error) {
			return acc.Value(), nil
		},
	)
}

// MinBy finds the smallest element according to compare, where
// compare(a, b) < 0 means a orders before b. Reducing no elements yields an
// empty Optional, and ties keep the earliest element.
func MinBy[T any](compare func(a, b T) int) MergeCollector[T, Optional[T], Optional[T]] {
	return NewMerging[T, Optional[T], Optional[T]](
		None[T],
		func(acc Optional[T], v T) (Optional[T], error) {
			if cur, ok := acc.Get(); !ok || compare(v, cur) < 0 {
				return Some(v), nil
			}
			return acc, nil
		},
		func(a, b Optional[T]) (Optional[T], error) {
			av, aok := a.Get()
			bv, bok := b.Get()
			switch {
			case !aok:
				return b, nil
			case !bok:
				return a, nil
			case compare(bv, av) < 0:
				return b, nil
			default:
				return a, nil
			}
		},
		nil,
	)
}

// MaxBy finds the largest element according to compare, where
// compare(a, b) < 0 means a orders before b. Reducing no elements yields an
// empty Optional, and ties keep the earliest element.
func MaxBy[T any](compare func(a, b T) int) MergeCollector[T, Optional[T], Optional[T]] {
	return NewMerging[T, Optional[T], Optional[T]](
		None[T],
		func(acc Optional[T], v T) (Optional[T], error) {
			if cur, ok := acc.Get(); !ok || compare(v, cur) > 0 {
				return Some(v), nil
			}
			return acc, nil
		},
		func(a, b Optional[T]) (Optional[T], error) {
			av, aok := a.Get()
			bv, bok := b.Get()
			switch {
			case !aok:
				return b, nil
			case !bok:
				return a, nil
			case compare(bv, av) > 0:
				return b, nil
			default:
				return a, nil
			}
		},
		nil,
	)
}
