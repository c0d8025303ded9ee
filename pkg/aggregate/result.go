package aggregate

import (
	"fmt"
	"iter"
	"strings"
)

// Result maps group keys to reduced values while remembering the order in
// which keys were first seen in the input. A Result returned by Partition
// always holds exactly the keys false and true, in that order.
//
// The zero Result is empty and ready to read from.
type Result[K comparable, R any] struct {
	keys   []K
	values map[K]R
}

// Len returns the number of keys.
func (r Result[K, R]) Len() int {
	return len(r.keys)
}

// Has reports whether key is present.
func (r Result[K, R]) Has(key K) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns the reduced value for key and whether the key is present.
func (r Result[K, R]) Get(key K) (R, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in first-seen order. The returned slice is a copy.
func (r Result[K, R]) Keys() []K {
	keys := make([]K, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// All iterates over key and value pairs in first-seen order.
func (r Result[K, R]) All() iter.Seq2[K, R] {
	return func(yield func(K, R) bool) {
		for _, key := range r.keys {
			if !yield(key, r.values[key]) {
				return
			}
		}
	}
}

// Map returns a plain map copy of the result, losing key order.
func (r Result[K, R]) Map() map[K]R {
	m := make(map[K]R, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// String renders the result in first-seen key order.
func (r Result[K, R]) String() string {
	var b strings.Builder
	b.WriteString("map[")
	for i, key := range r.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v:%v", key, r.values[key])
	}
	b.WriteByte(']')
	return b.String()
}
