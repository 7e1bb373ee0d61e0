// Package dynamo provides core simulation primitives for ODE systems.
//
// The package defines the fundamental interfaces and types shared by the
// rate-law compiler and the integrators:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Stepper], [AdaptiveStepper]: numerical integrator interfaces
//   - [Options]: tolerances and step budget for adaptive integration
//   - [Result]: time series returned by a successful integration
//
// # Failures
//
// Integration failures are reported as [*IntegrationError] values wrapping
// one of the sentinel errors ([ErrStepTooSmall], [ErrMaxSteps],
// [ErrInvalidState]); all of them satisfy errors.Is(err, ErrIntegrationFailure).
// A failed integration never returns a partial [Result].
//
// # Thread Safety
//
// Systems and results are plain values; steppers may keep scratch buffers
// and must not be shared between goroutines.
package dynamo
