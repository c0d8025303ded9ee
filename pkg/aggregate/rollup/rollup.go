package rollup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/goagg/pkg/aggregate"
	"github.com/vnykmshr/goagg/pkg/aggregate/collector"
	gaerrors "github.com/vnykmshr/goagg/pkg/common/errors"
	"github.com/vnykmshr/goagg/pkg/common/validation"
	"github.com/vnykmshr/goagg/pkg/metrics"
)

// Clock abstracts time for window stamps. Production code uses SystemClock;
// tests inject a controllable clock.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

// OverflowPolicy selects what Offer does when the element buffer is full.
type OverflowPolicy int

const (
	// OverflowBlock blocks Offer until a window drains the buffer.
	OverflowBlock OverflowPolicy = iota
	// OverflowDrop discards the offered element.
	OverflowDrop
	// OverflowDropOldest evicts the oldest buffered element to make room.
	OverflowDropOldest
	// OverflowFail rejects the offered element with ErrCapacityExceeded.
	OverflowFail
)

// String returns a human-readable policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDrop:
		return "drop"
	case OverflowDropOldest:
		return "drop_oldest"
	case OverflowFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Window is one emitted aggregation over the elements buffered since the
// previous window.
type Window[K comparable, R any] struct {
	// Start and End bound the window.
	Start time.Time
	End   time.Time

	// Elements is the number of elements aggregated into the window.
	Elements int

	// Groups holds the per-key reductions.
	Groups aggregate.Result[K, R]
}

// Stats holds counters describing a rollup's activity.
type Stats struct {
	// Offered is the total number of elements accepted into the buffer.
	Offered int64

	// Dropped is the total number of elements discarded due to overflow.
	Dropped int64

	// Windows is the total number of windows emitted.
	Windows int64

	// EmptyWindows is the number of emitted windows holding no elements.
	EmptyWindows int64

	// Failures is the number of windows whose aggregation failed.
	Failures int64

	// Elements is the total number of elements aggregated into windows.
	Elements int64

	// LastWindow is the end stamp of the most recent window.
	LastWindow time.Time

	// BufferUsage is the current number of buffered elements.
	BufferUsage int
}

// Config holds configuration for a Rollup.
type Config[T any, K comparable, A, R any] struct {
	// Classify derives the grouping key for each buffered element.
	Classify aggregate.Classifier[T, K]

	// Downstream reduces the elements of each group within a window.
	Downstream collector.Collector[T, A, R]

	// Interval between automatic windows. Mutually exclusive with
	// Schedule. Leave both unset for a manually flushed rollup.
	Interval time.Duration

	// Schedule is a cron expression with a seconds field, such as
	// "0 * * * * *" for the top of every minute. Mutually exclusive
	// with Interval.
	Schedule string

	// Location is the time zone for Schedule evaluation.
	// Default: time.Local
	Location *time.Location

	// BufferSize caps the number of elements buffered between windows.
	// Default: 1024
	BufferSize int

	// Overflow selects what Offer does when the buffer is full.
	// Default: OverflowBlock
	Overflow OverflowPolicy

	// OnWindow is called with every successfully emitted window,
	// including empty ones.
	OnWindow func(Window[K, R])

	// OnError is called when a window fails to aggregate. The window's
	// elements are discarded.
	OnError func(error)

	// OnDrop is called with each element discarded by OverflowDrop or
	// OverflowDropOldest.
	OnDrop func(T)

	// Clock supplies window stamps. Default: SystemClock
	Clock Clock
}

// DefaultBufferSize is the buffer capacity used when Config.BufferSize is zero.
const DefaultBufferSize = 1024

// Rollup buffers elements and aggregates them into periodic windows.
//
// Elements enter through Offer or TryOffer. A window is emitted on every
// schedule tick, on every manual Flush, and once more at Stop when elements
// remain buffered. A failed window discards its elements and is reported
// through OnError; later windows are unaffected.
type Rollup[T any, K comparable, A, R any] interface {
	// Offer buffers an element for the next window. When the buffer is
	// full the configured OverflowPolicy applies; under OverflowBlock the
	// context bounds the wait.
	Offer(ctx context.Context, v T) error

	// TryOffer buffers an element without ever blocking. When the buffer
	// is full it falls back to the configured drop policies, or returns
	// ErrCapacityExceeded where Offer would have waited or failed.
	TryOffer(v T) error

	// Flush aggregates the buffered elements into a window immediately.
	Flush(ctx context.Context) (Window[K, R], error)

	// Start begins emitting windows on the configured interval or
	// schedule.
	Start() error

	// Stop ends automatic windows and aggregates any remaining buffered
	// elements. The rollup cannot be restarted.
	Stop() error

	// IsRunning reports whether automatic windows are active.
	IsRunning() bool

	// Stats returns counters describing the rollup's activity.
	Stats() Stats

	metrics.Instrumentable
}

// rollupImpl implements Rollup.
type rollupImpl[T any, K comparable, A, R any] struct {
	config   Config[T, K, A, R]
	name     string
	clock    Clock
	schedule cron.Schedule
	location *time.Location

	// Buffer and synchronization
	mu      sync.Mutex
	notFull *sync.Cond
	buf     *ringBuffer[T]

	// Window serialization and stamps
	aggMu       sync.Mutex
	windowStart time.Time

	// Lifecycle
	stopCh  chan chan error
	wg      sync.WaitGroup
	running int32 // atomic
	closed  int32 // atomic

	// Statistics
	stats   Stats
	statsMu sync.RWMutex

	// Metrics
	metricsMu      sync.RWMutex
	metricsEnabled bool
	registry       *metrics.Registry
}

// New creates a Rollup with the given configuration.
func New[T any, K comparable, A, R any](cfg Config[T, K, A, R]) (Rollup[T, K, A, R], error) {
	return newRollup(cfg, "")
}

// NewWithMetrics creates a Rollup that records Prometheus metrics in the
// default registry under the given name.
func NewWithMetrics[T any, K comparable, A, R any](cfg Config[T, K, A, R], name string) (Rollup[T, K, A, R], error) {
	r, err := newRollup(cfg, name)
	if err != nil {
		return nil, err
	}
	r.metricsEnabled = true
	r.registry = metrics.DefaultRegistry
	return r, nil
}

func newRollup[T any, K comparable, A, R any](cfg Config[T, K, A, R], name string) (*rollupImpl[T, K, A, R], error) {
	cfg = applyConfigDefaults(cfg)
	schedule, err := validateConfig(cfg)
	if err != nil {
		return nil, err
	}

	r := &rollupImpl[T, K, A, R]{
		config:   cfg,
		name:     name,
		clock:    cfg.Clock,
		schedule: schedule,
		location: cfg.Location,
		buf:      newRingBuffer[T](cfg.BufferSize),
		stopCh:   make(chan chan error, 1),
	}
	r.notFull = sync.NewCond(&r.mu)
	r.windowStart = r.clock.Now()

	return r, nil
}

func applyConfigDefaults[T any, K comparable, A, R any](cfg Config[T, K, A, R]) Config[T, K, A, R] {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return cfg
}

func validateConfig[T any, K comparable, A, R any](cfg Config[T, K, A, R]) (cron.Schedule, error) {
	if cfg.Classify == nil {
		return nil, gaerrors.NewValidationError("rollup", "Classify", nil, "classifier is required")
	}
	if cfg.Downstream == nil {
		return nil, gaerrors.NewValidationError("rollup", "Downstream", nil, "downstream collector is required")
	}
	if err := validation.ValidateNonNegativeDuration("rollup", "Interval", cfg.Interval); err != nil {
		return nil, err
	}
	if cfg.Interval > 0 && cfg.Schedule != "" {
		return nil, gaerrors.NewValidationError("rollup", "Schedule", cfg.Schedule, "interval and schedule are mutually exclusive")
	}
	if cfg.BufferSize < 0 {
		return nil, gaerrors.NewValidationError("rollup", "BufferSize", cfg.BufferSize, "must not be negative")
	}
	if cfg.Overflow < OverflowBlock || cfg.Overflow > OverflowFail {
		return nil, gaerrors.NewValidationError("rollup", "Overflow", cfg.Overflow, "unknown overflow policy")
	}

	if cfg.Schedule == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cfg.Schedule)
	if err != nil {
		return nil, gaerrors.NewValidationError("rollup", "Schedule", cfg.Schedule, fmt.Sprintf("invalid cron expression: %v", err))
	}
	return schedule, nil
}

// Offer implements Rollup.Offer.
func (r *rollupImpl[T, K, A, R]) Offer(ctx context.Context, v T) error {
	if r.isClosed() {
		return gaerrors.ErrClosed
	}

	var evicted []T

	r.mu.Lock()
	for r.buf.full() {
		switch r.config.Overflow {
		case OverflowBlock:
			// Check for context cancellation before waiting
			select {
			case <-ctx.Done():
				r.mu.Unlock()
				return ctx.Err()
			default:
			}
			r.notFull.Wait()
			if r.isClosed() {
				r.mu.Unlock()
				return gaerrors.ErrClosed
			}

		case OverflowDrop:
			r.mu.Unlock()
			r.noteDrop(v)
			return nil

		case OverflowDropOldest:
			if old, ok := r.buf.pop(); ok {
				evicted = append(evicted, old)
			}

		case OverflowFail:
			r.mu.Unlock()
			return gaerrors.ErrCapacityExceeded
		}
	}
	r.buf.push(v)
	usage := r.buf.len()
	r.mu.Unlock()

	for _, old := range evicted {
		r.noteDrop(old)
	}

	r.updateStats(func(s *Stats) { s.Offered++ })
	if registry, ok := r.metricsRegistry(); ok {
		registry.RollupBufferUsage.WithLabelValues(r.name).Set(float64(usage))
	}
	return nil
}

// TryOffer implements Rollup.TryOffer.
func (r *rollupImpl[T, K, A, R]) TryOffer(v T) error {
	if r.isClosed() {
		return gaerrors.ErrClosed
	}

	var evicted []T

	r.mu.Lock()
	if r.buf.full() {
		switch r.config.Overflow {
		case OverflowDrop:
			r.mu.Unlock()
			r.noteDrop(v)
			return nil

		case OverflowDropOldest:
			if old, ok := r.buf.pop(); ok {
				evicted = append(evicted, old)
			}

		default:
			r.mu.Unlock()
			return gaerrors.ErrCapacityExceeded
		}
	}
	r.buf.push(v)
	usage := r.buf.len()
	r.mu.Unlock()

	for _, old := range evicted {
		r.noteDrop(old)
	}

	r.updateStats(func(s *Stats) { s.Offered++ })
	if registry, ok := r.metricsRegistry(); ok {
		registry.RollupBufferUsage.WithLabelValues(r.name).Set(float64(usage))
	}
	return nil
}

// Flush implements Rollup.Flush.
func (r *rollupImpl[T, K, A, R]) Flush(ctx context.Context) (Window[K, R], error) {
	if err := ctx.Err(); err != nil {
		return Window[K, R]{}, err
	}
	if r.isClosed() {
		return Window[K, R]{}, gaerrors.ErrClosed
	}
	return r.aggregateWindow()
}

// Start implements Rollup.Start.
func (r *rollupImpl[T, K, A, R]) Start() error {
	if r.isClosed() {
		return gaerrors.ErrClosed
	}
	if r.config.Interval == 0 && r.schedule == nil {
		return gaerrors.NewValidationError("rollup", "Interval", r.config.Interval, "an interval or schedule is required to start")
	}
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return fmt.Errorf("rollup already running, call Stop() first")
	}

	r.wg.Add(1)
	go r.runLoop()
	return nil
}

// Stop implements Rollup.Stop.
func (r *rollupImpl[T, K, A, R]) Stop() error {
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil // Already stopped
	}

	// Wake any Offer blocked on a full buffer
	r.mu.Lock()
	r.notFull.Broadcast()
	r.mu.Unlock()

	if atomic.LoadInt32(&r.running) == 1 {
		done := make(chan error, 1)
		r.stopCh <- done
		err := <-done
		r.wg.Wait()
		atomic.StoreInt32(&r.running, 0)
		return err
	}

	// Never started: drain whatever was buffered manually
	if r.bufferedLen() > 0 {
		_, err := r.aggregateWindow()
		return err
	}
	return nil
}

// IsRunning implements Rollup.IsRunning.
func (r *rollupImpl[T, K, A, R]) IsRunning() bool {
	return atomic.LoadInt32(&r.running) == 1 && !r.isClosed()
}

// Stats implements Rollup.Stats.
func (r *rollupImpl[T, K, A, R]) Stats() Stats {
	r.statsMu.RLock()
	stats := r.stats
	r.statsMu.RUnlock()

	stats.BufferUsage = r.bufferedLen()
	return stats
}

// EnableMetrics implements metrics.Instrumentable.
func (r *rollupImpl[T, K, A, R]) EnableMetrics(config metrics.Config) error {
	r.metricsMu.Lock()
	defer r.metricsMu.Unlock()

	r.metricsEnabled = config.Enabled
	if config.Registry != nil {
		r.registry = metrics.NewRegistry(config.Registry)
	} else if r.registry == nil {
		r.registry = metrics.DefaultRegistry
	}
	return nil
}

// DisableMetrics implements metrics.Instrumentable.
func (r *rollupImpl[T, K, A, R]) DisableMetrics() {
	r.metricsMu.Lock()
	defer r.metricsMu.Unlock()
	r.metricsEnabled = false
}

// MetricsEnabled implements metrics.Instrumentable.
func (r *rollupImpl[T, K, A, R]) MetricsEnabled() bool {
	r.metricsMu.RLock()
	defer r.metricsMu.RUnlock()
	return r.metricsEnabled
}

// runLoop emits windows on the configured cadence until stopped.
func (r *rollupImpl[T, K, A, R]) runLoop() {
	defer r.wg.Done()

	var (
		tickC  <-chan time.Time
		timer  *time.Timer
		ticker *time.Ticker
	)
	if r.schedule != nil {
		timer = time.NewTimer(r.untilNext())
		defer timer.Stop()
		tickC = timer.C
	} else {
		ticker = time.NewTicker(r.config.Interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-tickC:
			// Errors reach the caller through OnError; the loop keeps ticking
			_, _ = r.aggregateWindow()
			if timer != nil {
				timer.Reset(r.untilNext())
			}

		case done := <-r.stopCh:
			var err error
			if r.bufferedLen() > 0 {
				_, err = r.aggregateWindow()
			}
			done <- err
			return
		}
	}
}

// untilNext returns the wait until the next cron fire.
func (r *rollupImpl[T, K, A, R]) untilNext() time.Duration {
	next := r.schedule.Next(time.Now().In(r.location))
	return time.Until(next)
}

// aggregateWindow drains the buffer and reduces it into one window.
func (r *rollupImpl[T, K, A, R]) aggregateWindow() (Window[K, R], error) {
	r.aggMu.Lock()
	defer r.aggMu.Unlock()

	r.mu.Lock()
	batch := r.buf.drain()
	r.notFull.Broadcast()
	r.mu.Unlock()

	end := r.clock.Now()
	start := r.windowStart
	r.windowStart = end

	began := time.Now()
	groups, err := aggregate.GroupBy(batch, r.config.Classify, r.config.Downstream)
	elapsed := time.Since(began)

	registry, metricsOn := r.metricsRegistry()
	if metricsOn {
		registry.RollupBufferUsage.WithLabelValues(r.name).Set(0)
		registry.RollupFlushDuration.WithLabelValues(r.name).Observe(elapsed.Seconds())
	}

	if err != nil {
		opErr := gaerrors.NewOperationError("rollup", "aggregate", err).
			WithContext(fmt.Sprintf("%d elements discarded", len(batch)))

		r.updateStats(func(s *Stats) { s.Failures++ })
		if metricsOn {
			registry.RollupWindows.WithLabelValues(r.name, "failed").Inc()
		}
		if r.config.OnError != nil {
			r.config.OnError(opErr)
		}
		return Window[K, R]{}, opErr
	}

	w := Window[K, R]{
		Start:    start,
		End:      end,
		Elements: len(batch),
		Groups:   groups,
	}

	r.updateStats(func(s *Stats) {
		s.Windows++
		s.Elements += int64(len(batch))
		if len(batch) == 0 {
			s.EmptyWindows++
		}
		s.LastWindow = end
	})
	if metricsOn {
		registry.RollupWindows.WithLabelValues(r.name, "ok").Inc()
		registry.RollupElements.WithLabelValues(r.name).Add(float64(len(batch)))
	}

	if r.config.OnWindow != nil {
		r.config.OnWindow(w)
	}
	return w, nil
}

func (r *rollupImpl[T, K, A, R]) noteDrop(v T) {
	r.updateStats(func(s *Stats) { s.Dropped++ })
	if registry, ok := r.metricsRegistry(); ok {
		registry.RollupDropped.WithLabelValues(r.name).Inc()
	}
	if r.config.OnDrop != nil {
		r.config.OnDrop(v)
	}
}

func (r *rollupImpl[T, K, A, R]) bufferedLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.len()
}

func (r *rollupImpl[T, K, A, R]) isClosed() bool {
	return atomic.LoadInt32(&r.closed) != 0
}

func (r *rollupImpl[T, K, A, R]) metricsRegistry() (*metrics.Registry, bool) {
	r.metricsMu.RLock()
	defer r.metricsMu.RUnlock()
	return r.registry, r.metricsEnabled && r.registry != nil
}

// updateStats safely updates statistics.
func (r *rollupImpl[T, K, A, R]) updateStats(updater func(*Stats)) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	updater(&r.stats)
}
