/*
Package goagg provides a Go library for single-pass data aggregation with
grouping, partitioning, and composable reducers.

Aggregation (pkg/aggregate):
  - GroupBy: Classify elements and reduce each group in one pass
  - Partition: Split elements into true and false groups, both always present
  - collector: Built-in and composable reducers (counting, summing, extremes)

Scheduled Aggregation (pkg/aggregate/rollup):
  - rollup: Buffer a live feed and aggregate it into periodic windows

Distributed Aggregation (pkg/aggregate/distributed):
  - distributed: Merge per-instance group totals in Redis

Example usage:

	import (
		"github.com/vnykmshr/goagg/pkg/aggregate"
		"github.com/vnykmshr/goagg/pkg/aggregate/collector"
	)

	byState := aggregate.Key(func(t Trip) string { return t.State })
	miles := collector.Summing(func(t Trip) int64 { return t.Miles })

	totals, err := aggregate.GroupBy(trips, byState, miles)
	if err != nil {
		return err
	}
	for state, total := range totals.All() {
		fmt.Println(state, total)
	}
*/
package goagg
