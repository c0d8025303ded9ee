// Package metrics provides Prometheus instrumentation for goagg components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for goagg components.
type Registry struct {
	// Collector Metrics
	CollectorAccumulations *prometheus.CounterVec
	CollectorMerges        *prometheus.CounterVec
	CollectorFinishes      *prometheus.CounterVec
	CollectorErrors        *prometheus.CounterVec

	// Rollup Metrics
	RollupWindows       *prometheus.CounterVec
	RollupElements      *prometheus.CounterVec
	RollupDropped       *prometheus.CounterVec
	RollupBufferUsage   *prometheus.GaugeVec
	RollupFlushDuration *prometheus.HistogramVec

	// Distributed Table Metrics
	TableOperations        *prometheus.CounterVec
	TableOperationDuration *prometheus.HistogramVec
	TableErrors            *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by goagg components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Collector Metrics
		CollectorAccumulations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "collector",
				Name:      "accumulations_total",
				Help:      "Total number of elements folded into accumulators",
			},
			[]string{"collector_name"},
		),

		CollectorMerges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "collector",
				Name:      "merges_total",
				Help:      "Total number of accumulator merges",
			},
			[]string{"collector_name"},
		),

		CollectorFinishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "collector",
				Name:      "finishes_total",
				Help:      "Total number of accumulators finished into results",
			},
			[]string{"collector_name"},
		),

		CollectorErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "collector",
				Name:      "errors_total",
				Help:      "Total number of collector operation failures",
			},
			[]string{"collector_name", "operation"},
		),

		// Rollup Metrics
		RollupWindows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "rollup",
				Name:      "windows_total",
				Help:      "Total number of aggregation windows emitted",
			},
			[]string{"rollup_name", "status"},
		),

		RollupElements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "rollup",
				Name:      "elements_total",
				Help:      "Total number of elements aggregated into windows",
			},
			[]string{"rollup_name"},
		),

		RollupDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "rollup",
				Name:      "dropped_total",
				Help:      "Total number of elements dropped due to buffer overflow",
			},
			[]string{"rollup_name"},
		),

		RollupBufferUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goagg",
				Subsystem: "rollup",
				Name:      "buffer_usage",
				Help:      "Current number of buffered elements awaiting aggregation",
			},
			[]string{"rollup_name"},
		),

		RollupFlushDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goagg",
				Subsystem: "rollup",
				Name:      "flush_duration_seconds",
				Help:      "Time spent aggregating a window",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"rollup_name"},
		),

		// Distributed Table Metrics
		TableOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "distributed",
				Name:      "operations_total",
				Help:      "Total number of distributed table operations",
			},
			[]string{"table_name", "operation"},
		),

		TableOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goagg",
				Subsystem: "distributed",
				Name:      "operation_duration_seconds",
				Help:      "Time spent on distributed table operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"table_name", "operation"},
		),

		TableErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goagg",
				Subsystem: "distributed",
				Name:      "errors_total",
				Help:      "Total number of distributed table operation failures",
			},
			[]string{"table_name", "operation"},
		),
	}
}
