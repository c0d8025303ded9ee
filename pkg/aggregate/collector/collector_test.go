package collector

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// reduce runs a full supply, accumulate, finish cycle over elements.
func reduce[T, A, R any](t *testing.T, c Collector[T, A, R], elements []T) R {
	t.Helper()

	acc := c.Supply()
	var err error
	for _, v := range elements {
		acc, err = c.Accumulate(acc, v)
		if err != nil {
			t.Fatalf("accumulate: %v", err)
		}
	}

	r, err := c.Finish(acc)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Run("runs supply accumulate finish", func(t *testing.T) {
		c := New[string, []string, string](
			func() []string { return nil },
			func(acc []string, s string) ([]string, error) { return append(acc, s), nil },
			func(acc []string) (string, error) { return strings.Join(acc, "-"), nil },
		)

		got := reduce(t, c, []string{"a", "b", "c"})
		if got != "a-b-c" {
			t.Errorf("result = %q, want %q", got, "a-b-c")
		}
	})

	t.Run("nil finisher returns accumulator", func(t *testing.T) {
		c := New[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			nil,
		)

		got := reduce(t, c, []int{1, 2, 3})
		if got != 6 {
			t.Errorf("result = %d, want 6", got)
		}
	})

	t.Run("nil finisher with mismatched types fails", func(t *testing.T) {
		c := New[int, int, string](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			nil,
		)

		if _, err := c.Finish(42); err == nil {
			t.Error("expected error for accumulator type mismatch, got nil")
		}
	})

	t.Run("accumulate error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		c := New[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return 0, boom },
			nil,
		)

		if _, err := c.Accumulate(0, 1); !errors.Is(err, boom) {
			t.Errorf("accumulate error = %v, want %v", err, boom)
		}
	})

	t.Run("does not support merging", func(t *testing.T) {
		c := New[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			nil,
		)

		if _, ok := AsMerging(c); ok {
			t.Error("collector built with New should not be merge-capable")
		}
	})
}

func TestNewMerging(t *testing.T) {
	t.Run("merges accumulators", func(t *testing.T) {
		c := NewMerging[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			func(a, b int) (int, error) { return a + b, nil },
			nil,
		)

		merged, err := c.Merge(3, 4)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if merged != 7 {
			t.Errorf("merged = %d, want 7", merged)
		}
	})

	t.Run("is merge-capable through the interface", func(t *testing.T) {
		var c Collector[int, int, int] = NewMerging[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			func(a, b int) (int, error) { return a + b, nil },
			nil,
		)

		m, ok := AsMerging(c)
		if !ok {
			t.Fatal("expected merge-capable collector")
		}
		if got, err := m.Merge(1, 2); err != nil || got != 3 {
			t.Errorf("Merge(1, 2) = %d, %v, want 3, nil", got, err)
		}
	})

	t.Run("nil merge function reports ErrNotMergeable", func(t *testing.T) {
		c := NewMerging[int, int, int](
			func() int { return 0 },
			func(acc, v int) (int, error) { return acc + v, nil },
			nil,
			nil,
		)

		if _, err := c.Merge(1, 2); !errors.Is(err, ErrNotMergeable) {
			t.Errorf("merge error = %v, want %v", err, ErrNotMergeable)
		}
	})
}

func TestOptional(t *testing.T) {
	t.Run("some", func(t *testing.T) {
		o := Some(42)

		if !o.Present() {
			t.Error("Some should be present")
		}
		v, ok := o.Get()
		if !ok || v != 42 {
			t.Errorf("Get() = %d, %v, want 42, true", v, ok)
		}
		if o.OrElse(0) != 42 {
			t.Errorf("OrElse(0) = %d, want 42", o.OrElse(0))
		}
		if o.String() != "42" {
			t.Errorf("String() = %q, want %q", o.String(), "42")
		}
	})

	t.Run("none", func(t *testing.T) {
		o := None[int]()

		if o.Present() {
			t.Error("None should not be present")
		}
		if _, ok := o.Get(); ok {
			t.Error("Get() on None should report absence")
		}
		if o.OrElse(7) != 7 {
			t.Errorf("OrElse(7) = %d, want 7", o.OrElse(7))
		}
		if o.String() != "none" {
			t.Errorf("String() = %q, want %q", o.String(), "none")
		}
	})
}

func TestMeanValue(t *testing.T) {
	m := Mean{Sum: 9, Count: 2}
	if got := m.Value(); got != 4.5 {
		t.Errorf("Value() = %v, want 4.5", got)
	}

	if got := (Mean{}).Value(); !math.IsNaN(got) {
		t.Errorf("empty Value() = %v, want NaN", got)
	}
}
