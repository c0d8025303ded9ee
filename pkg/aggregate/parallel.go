package aggregate

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
)

// GroupByParallel splits elements into contiguous shards, groups each shard
// independently, and merges the per-shard accumulators in shard order.
// Results are identical to GroupBy, including first-seen key order: a key
// first occurs in the earliest shard containing it, and shards merge in
// input order.
//
// The downstream collector must support merging. A non-merging collector
// fails with a ReductionError wrapping collector.ErrNotMergeable.
//
// shards <= 0 uses one shard per CPU. Inputs smaller than the shard count
// fall back to a sequential pass.
func GroupByParallel[T any, K comparable, A, R any](elements []T, classify Classifier[T, K], downstream collector.Collector[T, A, R], shards int) (Result[K, R], error) {
	var zero Result[K, R]

	m, ok := collector.AsMerging(downstream)
	if !ok {
		return zero, &ReductionError{Op: "merge", Index: -1, Err: collector.ErrNotMergeable}
	}

	if shards <= 0 {
		shards = runtime.NumCPU()
	}
	if shards > len(elements) {
		shards = len(elements)
	}
	if shards <= 1 {
		return GroupBy(elements, classify, downstream)
	}

	type shardState struct {
		order []K
		accs  map[K]A
		err   error
	}

	states := make([]shardState, shards)
	chunk := (len(elements) + shards - 1) / shards

	var wg sync.WaitGroup
	for s := 0; s < shards; s++ {
		lo := s * chunk
		hi := min(lo+chunk, len(elements))
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(s, lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					states[s].err = fmt.Errorf("aggregation shard panicked: %v", r)
				}
			}()

			var order []K
			accs := make(map[K]A)
			for j, v := range elements[lo:hi] {
				key, err := classify(v)
				if err != nil {
					states[s].err = &ClassificationError{Index: lo + j, Err: err}
					return
				}

				acc, seen := accs[key]
				if !seen {
					acc = downstream.Supply()
					order = append(order, key)
				}

				acc, err = downstream.Accumulate(acc, v)
				if err != nil {
					states[s].err = &ReductionError{Op: "accumulate", Key: key, Index: lo + j, Err: err}
					return
				}
				accs[key] = acc
			}
			states[s].order = order
			states[s].accs = accs
		}(s, lo, hi)
	}
	wg.Wait()

	// Shards hold contiguous input ranges, so the earliest failing shard
	// holds the failure a sequential pass would hit first.
	for s := range states {
		if states[s].err != nil {
			return zero, states[s].err
		}
	}

	var order []K
	merged := make(map[K]A)
	for s := range states {
		for _, key := range states[s].order {
			acc, seen := merged[key]
			if !seen {
				merged[key] = states[s].accs[key]
				order = append(order, key)
				continue
			}

			combined, err := m.Merge(acc, states[s].accs[key])
			if err != nil {
				return zero, &ReductionError{Op: "merge", Key: key, Index: -1, Err: err}
			}
			merged[key] = combined
		}
	}

	return finishGroups(order, merged, downstream)
}
