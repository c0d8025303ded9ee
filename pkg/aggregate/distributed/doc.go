// Package distributed provides keyed aggregate tables shared across
// application instances, using Redis as the coordination backend.
//
// A Table holds one numeric value per group key and folds contributions
// from any number of instances into it. This turns per-instance
// aggregation results into a global view, which is what horizontally
// scaled services need when each instance only sees a slice of the
// input.
//
// # Overview
//
// Contributions to the same key combine according to the table's Mode:
//
//   - Sum: values add up (totals, counts)
//   - Min: the smallest contribution wins
//   - Max: the largest contribution wins
//
// Sum merges ride Redis HINCRBYFLOAT pipelines; Min and Max merges run
// one atomic Lua script so concurrent instances can never lose an
// extreme. All values are float64 on the wire and keys are strings.
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	table, err := distributed.NewTable(distributed.Config{
//		Redis: rdb,
//		Key:   "miles_by_state",
//		Mode:  distributed.Sum,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer table.Close()
//
//	ctx := context.Background()
//	if err := table.Merge(ctx, map[string]float64{"NY": 2300, "TX": 2500}); err != nil {
//		log.Fatal(err)
//	}
//
//	total, ok, err := table.Get(ctx, "NY")
//
// # Bridging Local Aggregations
//
// MergeGroups folds a local aggregation result straight into a table,
// rendering group keys as strings:
//
//	totals, err := aggregate.GroupBy(trips, byState, collector.Summing(tripMiles))
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := distributed.MergeGroups(ctx, table, totals, nil); err != nil {
//		log.Fatal(err)
//	}
//
// # Multiple Instances
//
// Instances sharing a Key prefix share the table. Each registers its
// InstanceID on creation and deregisters on Close:
//
//	cfg := distributed.DefaultConfig()
//	cfg.Redis = rdb
//	cfg.Key = "miles_by_state"
//
//	// Every instance folds its own slice of the input
//	table, _ := distributed.NewTable(cfg)
//	defer table.Close()
//
//	instances, _ := table.Instances(ctx)
//
// # Reading the Table
//
// Get reads one key, Snapshot reads them all, and Stats reports merge
// counts, group counts, and active instances. Snapshot carries no key
// ordering; order-sensitive callers should sort or consult their local
// results.
//
// # Metrics
//
// NewTableWithMetrics records operation counts, latencies, and failures
// per table name in the default Prometheus registry.
package distributed
