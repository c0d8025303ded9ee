package collector

import (
	"github.com/vnykmshr/goagg/pkg/metrics"
)

// WithMetrics wraps a collector so that accumulate, merge, and finish
// operations are counted in the default metrics registry under the given
// collector name. Merge support of the wrapped collector is preserved.
func WithMetrics[T, A, R any](c Collector[T, A, R], name string) Collector[T, A, R] {
	return WithMetricsConfig(c, name, metrics.Config{Enabled: true})
}

// WithMetricsConfig wraps a collector with metrics using a custom
// configuration. A disabled configuration returns the collector unchanged.
func WithMetricsConfig[T, A, R any](c Collector[T, A, R], name string, cfg metrics.Config) Collector[T, A, R] {
	if !cfg.Enabled {
		return c
	}

	registry := metrics.DefaultRegistry
	if cfg.Registry != nil {
		registry = metrics.NewRegistry(cfg.Registry)
	}

	accumulate := func(acc A, v T) (A, error) {
		out, err := c.Accumulate(acc, v)
		if err != nil {
			registry.CollectorErrors.WithLabelValues(name, "accumulate").Inc()
			return out, err
		}
		registry.CollectorAccumulations.WithLabelValues(name).Inc()
		return out, nil
	}

	finish := func(acc A) (R, error) {
		r, err := c.Finish(acc)
		if err != nil {
			registry.CollectorErrors.WithLabelValues(name, "finish").Inc()
			return r, err
		}
		registry.CollectorFinishes.WithLabelValues(name).Inc()
		return r, nil
	}

	if m, ok := AsMerging(c); ok {
		merge := func(a, b A) (A, error) {
			out, err := m.Merge(a, b)
			if err != nil {
				registry.CollectorErrors.WithLabelValues(name, "merge").Inc()
				return out, err
			}
			registry.CollectorMerges.WithLabelValues(name).Inc()
			return out, nil
		}
		return NewMerging[T, A, R](c.Supply, accumulate, merge, finish)
	}

	return New[T, A, R](c.Supply, accumulate, finish)
}
