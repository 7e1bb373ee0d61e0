package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrIntegrationFailure is wrapped by every solver failure below.
	ErrIntegrationFailure = errors.New("dynamo: integration failed")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = fmt.Errorf("%w: invalid state (NaN or Inf detected)", ErrIntegrationFailure)

	// ErrStepTooSmall indicates the adaptive step collapsed below the minimum.
	ErrStepTooSmall = fmt.Errorf("%w: adaptive timestep below minimum", ErrIntegrationFailure)

	// ErrMaxSteps indicates the step budget ran out before the end of the span.
	ErrMaxSteps = fmt.Errorf("%w: step budget exhausted", ErrIntegrationFailure)

	// ErrParameterBounds indicates a solver option is outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidSpan indicates an empty or non-finite time span.
	ErrInvalidSpan = errors.New("dynamo: invalid time span")
)

// IntegrationError wraps a solver failure with the point where it happened.
// No partial series accompanies it.
type IntegrationError struct {
	Step    int
	Time    float64
	Dt      float64
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g, dt=%.3g): %s", e.Step, e.Time, e.Dt, e.Wrapped.Error())
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
