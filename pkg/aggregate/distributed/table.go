package distributed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/goagg/pkg/aggregate"
	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
	gaerrors "github.com/vnykmshr/goagg/pkg/common/errors"
	"github.com/vnykmshr/goagg/pkg/common/validation"
	"github.com/vnykmshr/goagg/pkg/metrics"
)

// Table is a keyed numeric aggregate shared across application instances
// using Redis as the coordination backend.
type Table interface {
	// Merge folds a batch of per-key contributions into the table.
	Merge(ctx context.Context, groups map[string]float64) error

	// Add folds a single contribution into the table.
	Add(ctx context.Context, key string, value float64) error

	// Get returns the merged value for one key and whether it exists.
	Get(ctx context.Context, key string) (float64, bool, error)

	// Snapshot returns the merged value of every key. Iteration order is
	// unspecified.
	Snapshot(ctx context.Context) (map[string]float64, error)

	// Instances lists the application instances registered on the table.
	Instances(ctx context.Context) ([]string, error)

	// Stats returns current table statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Reset clears the table state (useful for testing).
	Reset(ctx context.Context) error

	// Close deregisters this instance and releases resources.
	Close() error
}

// Mode selects how concurrent contributions to the same key combine.
type Mode int

const (
	// Sum adds contributions together.
	Sum Mode = iota

	// Min keeps the smallest contribution.
	Min

	// Max keeps the largest contribution.
	Max
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Sum:
		return "sum"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// Stats holds distributed table statistics.
type Stats struct {
	Mode            Mode
	Groups          int64
	TotalMerges     int64
	TotalValues     int64
	ActiveInstances []string
}

// Config holds configuration for distributed tables.
type Config struct {
	// Redis client for coordination
	Redis redis.UniversalClient

	// Key is the Redis key prefix for this table
	Key string

	// Mode selects how contributions to the same key combine
	Mode Mode

	// InstanceID uniquely identifies this application instance
	InstanceID string

	// RedisTimeout is the timeout for Redis operations
	RedisTimeout time.Duration

	// KeyTTL is how long Redis keys should live (defaults to 1 hour)
	KeyTTL time.Duration
}

// DefaultConfig returns a default distributed table configuration.
func DefaultConfig() Config {
	return Config{
		InstanceID:   generateInstanceID(),
		RedisTimeout: 500 * time.Millisecond,
		KeyTTL:       time.Hour,
	}
}

// NewTable creates a distributed table with the given configuration.
func NewTable(config Config) (Table, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	return newRedisTable(config, "", nil)
}

// NewTableWithMetrics creates a distributed table that records Prometheus
// metrics in the default registry under the given name.
func NewTableWithMetrics(config Config, name string) (Table, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	return newRedisTable(config, name, metrics.DefaultRegistry)
}

// validateConfig validates the table configuration.
func validateConfig(config Config) error {
	if config.Redis == nil {
		return gaerrors.NewValidationError("distributed", "Redis", nil, "redis client is required")
	}
	if err := validation.ValidateNotEmpty("distributed", "Key", config.Key); err != nil {
		return err
	}
	if config.Mode < Sum || config.Mode > Max {
		return gaerrors.NewValidationError("distributed", "Mode", config.Mode, "unknown merge mode")
	}
	if err := validation.ValidateNonNegativeDuration("distributed", "RedisTimeout", config.RedisTimeout); err != nil {
		return err
	}
	return nil
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.InstanceID == "" {
		config.InstanceID = generateInstanceID()
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = 500 * time.Millisecond
	}
	if config.KeyTTL == 0 {
		config.KeyTTL = time.Hour
	}
	return config
}

// RedisError represents a Redis operation error.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}

// MergeGroups folds a local aggregation result into a distributed table.
// Keys are rendered with keyFn; pass nil to render them with fmt.Sprint.
func MergeGroups[K comparable, N collector.Number](ctx context.Context, table Table, result aggregate.Result[K, N], keyFn func(K) string) error {
	if keyFn == nil {
		keyFn = func(k K) string { return fmt.Sprint(k) }
	}

	groups := make(map[string]float64, result.Len())
	for k, v := range result.All() {
		groups[keyFn(k)] = float64(v)
	}
	return table.Merge(ctx, groups)
}
