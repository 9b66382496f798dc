package sim

import (
	"errors"
	"fmt"
)

// Domain errors for controller and driver operations.
var (
	// ErrConfiguration indicates malformed construction parameters.
	ErrConfiguration = errors.New("sim: invalid configuration")

	// ErrInvalidState indicates a state or parameter vector with invalid
	// dimensions or out-of-domain values.
	ErrInvalidState = errors.New("sim: invalid state")

	// ErrUnstable indicates the integration became numerically unstable
	// (NaN or Inf in phases or amplitudes).
	ErrUnstable = errors.New("sim: numerically unstable (state diverged)")

	// ErrDimensionMismatch indicates mismatched vector/matrix dimensions.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch")
)

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
