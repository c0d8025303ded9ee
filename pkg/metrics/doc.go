// Package metrics provides Prometheus instrumentation for goagg components.
//
// This package enables monitoring and observability for goagg's collectors,
// scheduled rollups, and distributed tables through Prometheus metrics.
//
// # Overview
//
// The metrics package provides automatic instrumentation for:
//   - Collectors (accumulations, merges, finishes, failures)
//   - Scheduled rollups (windows emitted, elements aggregated, drops, flush times)
//   - Distributed tables (operations, latencies, failures)
//
// # Quick Start
//
// Enable metrics by wrapping a collector or naming a component:
//
//	// Collector with metrics
//	summing := collector.WithMetrics(collector.Summing(tripMiles), "trip_miles")
//
//	// Rollup with metrics
//	r, err := rollup.NewWithMetrics(cfg, "hourly_trips")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	summing := collector.WithMetricsConfig(collector.Summing(tripMiles), "trip_miles", config)
//
// # Available Metrics
//
// ## Collector Metrics
//
//   - goagg_collector_accumulations_total: Elements folded into accumulators
//   - goagg_collector_merges_total: Accumulator merges
//   - goagg_collector_finishes_total: Accumulators finished into results
//   - goagg_collector_errors_total: Collector operation failures
//
// ## Rollup Metrics
//
//   - goagg_rollup_windows_total: Aggregation windows emitted
//   - goagg_rollup_elements_total: Elements aggregated into windows
//   - goagg_rollup_dropped_total: Elements dropped due to buffer overflow
//   - goagg_rollup_buffer_usage: Buffered elements awaiting aggregation
//   - goagg_rollup_flush_duration_seconds: Time spent aggregating a window
//
// ## Distributed Table Metrics
//
//   - goagg_distributed_operations_total: Distributed table operations
//   - goagg_distributed_operation_duration_seconds: Table operation latencies
//   - goagg_distributed_errors_total: Table operation failures
//
// # Labels
//
// Metrics include relevant labels for filtering and aggregation:
//
//   - collector_name: User-provided name for the instrumented collector
//   - operation: Collector phase ("accumulate", "merge", "finish") or table
//     operation ("merge", "add", "get", "snapshot", "reset")
//   - rollup_name: User-provided name for the rollup instance
//   - status: Window outcome ("ok" or "failed")
//   - table_name: User-provided name for the distributed table
//
// # Runtime Control
//
// Components implementing the Instrumentable interface support runtime control:
//
//	r, _ := rollup.NewWithMetrics(cfg, "hourly_trips")
//	r.DisableMetrics()            // Stop collecting metrics
//	r.EnableMetrics(config)       // Re-enable with new config
//	enabled := r.MetricsEnabled() // Check current state
//
// # Performance
//
// Metrics collection is designed for minimal overhead:
//   - Metrics are updated only when operations occur
//   - No background goroutines or timers
//   - Conditional metrics updates based on enabled state
package metrics
