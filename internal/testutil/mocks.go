package testutil

import (
	"errors"
	"sync"
	"time"
)

// MockClock implements the Clock interface for testing with controllable time.
// This is used across rollup tests to avoid actual time delays.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// ErrSimulated is the error a FailingCollector returns by default.
var ErrSimulated = errors.New("simulated failure")

// FailingCollector is a test collector that sums ints and can simulate
// failures at each phase of a reduction. It satisfies the collector
// interfaces structurally so error paths can be exercised without a real
// reduction going wrong.
type FailingCollector struct {
	mu              sync.Mutex
	accumulateCalls int
	failOnNth       int
	failFinish      bool
	failMerge       bool
	err             error
}

// NewFailingCollector creates a new FailingCollector that never fails
// until configured otherwise.
func NewFailingCollector() *FailingCollector {
	return &FailingCollector{}
}

func (fc *FailingCollector) failure() error {
	if fc.err != nil {
		return fc.err
	}
	return ErrSimulated
}

// Supply returns the zero accumulator.
func (fc *FailingCollector) Supply() int { return 0 }

// Accumulate adds value into acc, failing on the configured call.
func (fc *FailingCollector) Accumulate(acc, value int) (int, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.accumulateCalls++

	if fc.failOnNth > 0 && fc.accumulateCalls >= fc.failOnNth {
		return 0, fc.failure()
	}

	return acc + value, nil
}

// Finish returns the accumulated sum.
func (fc *FailingCollector) Finish(acc int) (int, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.failFinish {
		return 0, fc.failure()
	}
	return acc, nil
}

// Merge combines two partial sums.
func (fc *FailingCollector) Merge(a, b int) (int, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.failMerge {
		return 0, fc.failure()
	}
	return a + b, nil
}

// AccumulateCalls returns the number of Accumulate calls so far.
func (fc *FailingCollector) AccumulateCalls() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.accumulateCalls
}

// FailOnNthAccumulate configures the collector to fail from the nth
// Accumulate call onward (1-based).
func (fc *FailingCollector) FailOnNthAccumulate(n int) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.failOnNth = n
}

// FailOnFinish configures every Finish call to fail.
func (fc *FailingCollector) FailOnFinish() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.failFinish = true
}

// FailOnMerge configures every Merge call to fail.
func (fc *FailingCollector) FailOnMerge() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.failMerge = true
}

// SetError overrides the error returned on simulated failures.
func (fc *FailingCollector) SetError(err error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.err = err
}

// Reset clears counters and failure configuration.
func (fc *FailingCollector) Reset() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.accumulateCalls = 0
	fc.failOnNth = 0
	fc.failFinish = false
	fc.failMerge = false
	fc.err = nil
}
