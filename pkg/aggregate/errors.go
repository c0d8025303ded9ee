package aggregate

import (
	"errors"
	"fmt"
)

// ClassificationError reports a classifier or predicate failure for a
// specific element. The aggregation stops at the first failure and no
// partial result is returned.
type ClassificationError struct {
	// Index is the zero-based position of the element in the input.
	Index int
	// Err is the error returned by the classifier or predicate.
	Err error
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify element %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying classifier error.
func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// ReductionError reports a downstream collector failure. The aggregation
// stops at the first failure and no partial result is returned.
type ReductionError struct {
	// Op is the collector phase that failed: "accumulate", "merge", or
	// "finish".
	Op string
	// Key is the group key whose reduction failed, or nil when the
	// failure is not tied to a single key.
	Key any
	// Index is the zero-based position of the element being folded, or
	// -1 when the failure happened after the input was consumed.
	Index int
	// Err is the error returned by the collector.
	Err error
}

// Error implements the error interface.
func (e *ReductionError) Error() string {
	switch {
	case e.Key == nil && e.Index < 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Index < 0:
		return fmt.Sprintf("%s for key %v: %v", e.Op, e.Key, e.Err)
	default:
		return fmt.Sprintf("%s for key %v at element %d: %v", e.Op, e.Key, e.Index, e.Err)
	}
}

// Unwrap returns the underlying collector error.
func (e *ReductionError) Unwrap() error {
	return e.Err
}

// IsClassificationError checks if an error is a ClassificationError.
func IsClassificationError(err error) bool {
	var ce *ClassificationError
	return errors.As(err, &ce)
}

// IsReductionError checks if an error is a ReductionError.
func IsReductionError(err error) bool {
	var re *ReductionError
	return errors.As(err, &re)
}
