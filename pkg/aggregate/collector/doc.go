/*
Package collector provides reusable, composable reductions for aggregations.

A Collector folds a sequence of elements into a single result through three
phases: Supply seeds a fresh accumulator, Accumulate folds elements into it
one at a time, and Finish transforms the accumulator into the final result.
A MergeCollector can additionally combine two accumulators built from
separate portions of the input, which is what makes a reduction shardable.

Built-in Collectors:

	collector.ToSlice[string]()            // elements in encounter order
	collector.ToSet[string]()              // distinct elements
	collector.ToMap(keyFn, valueFn)        // unique keys, ErrDuplicateKey otherwise
	collector.Counting[Trip]()             // number of elements
	collector.Summing(func(t Trip) int { return t.Miles })
	collector.Averaging(func(t Trip) int { return t.Miles })
	collector.MinBy(byMiles)               // Optional result, empty when no elements
	collector.MaxBy(byMiles)

Composition:

Collectors compose without touching the reduction logic:

	// Average trip distance, considering only long trips
	longTripMean := collector.Filtering(isLong, collector.Averaging(miles))

	// Collect the states rather than the trips themselves
	states := collector.Mapping(func(t Trip) string { return t.State }, collector.ToSet[string]())

	// Post-process a result
	rounded := collector.AndThen(collector.Averaging(miles), func(m float64) (int, error) {
		return int(math.Round(m)), nil
	})

Custom Collectors:

New and NewMerging adapt plain functions, so one-off reductions do not need
a named type:

	longest := collector.NewMerging[string, string, string](
		func() string { return "" },
		func(acc, s string) (string, error) {
			if len(s) > len(acc) {
				return s, nil
			}
			return acc, nil
		},
		func(a, b string) (string, error) {
			if len(b) > len(a) {
				return b, nil
			}
			return a, nil
		},
		nil,
	)

Accumulate and Finish may fail; a failing collector aborts the enclosing
aggregation with no partial result.

Metrics:

WithMetrics decorates any collector with Prometheus counters for its
accumulate, merge, and finish operations:

	summing := collector.WithMetrics(collector.Summing(miles), "trip_miles")
*/
package collector
