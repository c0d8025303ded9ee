package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestTimeout is the default timeout for tests
const TestTimeout = 5 * time.Second

// WithTimeout creates a context with the default test timeout
func WithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout)
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test if err does not match target via errors.Is
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("got error %v, want %v", err, target)
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// AssertNotEqual fails the test if got == want
func AssertNotEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got == want {
		t.Fatalf("got %v, want different value", got)
	}
}

// AssertSliceEqual fails the test if got and want differ in length or elements
func AssertSliceEqual[T comparable](t *testing.T, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v (len %d), want %v (len %d)", got, len(got), want, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// Eventually polls condition until it returns true or the timeout elapses
func Eventually(t *testing.T, condition func() bool, timeout, interval time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	t.Fatalf("condition not met within %v", timeout)
}

// AssertEventually polls condition with default timeout and interval
func AssertEventually(t *testing.T, condition func() bool) {
	t.Helper()
	Eventually(t, condition, TestTimeout, 10*time.Millisecond)
}

// EventuallyWithContext polls condition until it returns true or the
// context is done
func EventuallyWithContext(t *testing.T, ctx context.Context, condition func() bool, interval time.Duration) {
	t.Helper()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("condition not met before context done: %v", ctx.Err())
		case <-ticker.C:
		}
	}
}

// CallbackTracker records callback invocations for assertions in tests
type CallbackTracker struct {
	mu    sync.Mutex
	count int
	value any
}

// NewCallbackTracker creates a new CallbackTracker
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Mark records an invocation, optionally with a value
func (ct *CallbackTracker) Mark(values ...any) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count++
	if len(values) > 0 {
		ct.value = values[len(values)-1]
	}
}

// Called reports whether Mark has been called at least once
func (ct *CallbackTracker) Called() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.count > 0
}

// CallCount returns the number of Mark calls
func (ct *CallbackTracker) CallCount() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.count
}

// Value returns the value recorded by the most recent Mark call
func (ct *CallbackTracker) Value() any {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.value
}

// Reset clears the recorded invocations
func (ct *CallbackTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count = 0
	ct.value = nil
}

// AssertCalled fails the test if the tracker was never marked
func (ct *CallbackTracker) AssertCalled(t *testing.T) {
	t.Helper()
	if !ct.Called() {
		t.Fatal("expected callback to be called")
	}
}

// AssertNotCalled fails the test if the tracker was marked
func (ct *CallbackTracker) AssertNotCalled(t *testing.T) {
	t.Helper()
	if ct.Called() {
		t.Fatalf("expected callback not to be called, got %d calls", ct.CallCount())
	}
}

// AssertCallCount fails the test if the call count differs from want
func (ct *CallbackTracker) AssertCallCount(t *testing.T, want int) {
	t.Helper()
	if got := ct.CallCount(); got != want {
		t.Fatalf("call count = %d, want %d", got, want)
	}
}
