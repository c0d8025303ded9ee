/*
Package aggregate groups, partitions, and reduces in-memory sequences in a
single pass.

The package separates three concerns that usually end up tangled inside
hand-written grouping loops: deriving a key for each element (a Classifier
or Predicate), folding the elements of a group into a value (a
collector.Collector), and the traversal itself (GroupBy, Partition, and
their variants).

Core Concepts:

GroupBy classifies each element and reduces the elements of each key with a
downstream collector. Keys appear in the result in first-seen order, and a
key exists only if some element produced it:

	byState := aggregate.Key(func(t Trip) string { return t.State })
	miles := collector.Summing(func(t Trip) int { return t.Miles })

	totals, err := aggregate.GroupBy(trips, byState, miles)
	// totals: NY:2300 TX:2500 VA:5600 FL:6700 CA:5400

Partition is the two-way special case with a stronger contract: the result
always holds both the false and the true key, even when one side matched no
elements. An unmatched side carries the reduction of an empty input, such
as a zero sum or an empty slice:

	isLong := aggregate.Match(func(t Trip) bool { return t.Miles > 4000 })

	split, err := aggregate.Partition(trips, isLong, miles)
	// split: false:4800 true:17700

GroupElements and PartitionElements are shorthands that collect the
elements themselves into slices, preserving input order within each group.

Results:

Both operations return a Result, an insertion-ordered mapping:

	for state, total := range totals.All() {
		fmt.Println(state, total)
	}

	total, ok := totals.Get("NY")
	keys := totals.Keys()

Error Handling:

Aggregations fail fast. The first classifier failure stops the pass and
returns a ClassificationError carrying the element index; the first
collector failure returns a ReductionError carrying the phase, group key,
and element index. In both cases no partial result is returned:

	_, err := aggregate.GroupBy(trips, byState, miles)
	var ce *aggregate.ClassificationError
	if errors.As(err, &ce) {
		log.Printf("element %d is unclassifiable: %v", ce.Index, ce.Err)
	}

Parallel Aggregation:

GroupByParallel shards the input into contiguous ranges, reduces each shard
on its own goroutine, and merges per-shard accumulators in shard order. The
result is identical to the sequential pass, including key order. It
requires a merge-capable downstream collector:

	totals, err := aggregate.GroupByParallel(trips, byState, miles, 0)

Sequences:

GroupBySeq and PartitionSeq consume an iter.Seq instead of a slice, so
inputs can come from any finite streamed source without materializing it:

	totals, err := aggregate.GroupBySeq(maps.Values(tripByID), byState, miles)

Related Packages:

The collector subpackage provides built-in and composable reductions, the
rollup subpackage runs aggregations on a schedule over buffered elements,
and the distributed subpackage merges aggregation results across processes
through Redis.
*/
package aggregate
