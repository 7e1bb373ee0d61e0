package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// maxFixedSteps bounds SolveFixed so a tiny dt cannot exhaust memory.
const maxFixedSteps = 50_000_000

func validateProblem(sys dynamo.System, x0 dynamo.State, t0, t1 float64) error {
	if len(x0) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system has %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state %v", dynamo.ErrInvalidState, x0)
	}
	span := dynamo.State{t0, t1}
	if !span.IsValid() || t1 <= t0 {
		return fmt.Errorf("%w: [%g, %g]", dynamo.ErrInvalidSpan, t0, t1)
	}
	return nil
}

// Solve integrates sys from x0 over [t0, t1] with the adaptive Dormand-Prince
// method and returns every accepted step, including both endpoints. On any
// failure it returns a nil result and an error; a failed solve never yields
// a partial series.
func Solve(sys dynamo.System, x0 dynamo.State, t0, t1 float64, opts dynamo.Options) (*dynamo.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := validateProblem(sys, x0, t0, t1); err != nil {
		return nil, err
	}

	rk := NewRK45()
	result := &dynamo.Result{
		Times:   []float64{t0},
		States:  []dynamo.State{x0.Clone()},
		Metrics: make(map[string]float64),
	}

	x := x0.Clone()
	t := t0
	dt := opts.InitialStep
	if dt == 0 {
		dt = initialStep(sys, x, t0, t1, opts)
		result.Evaluations += 2
	}

	attempts := 0
	for t < t1 {
		if attempts >= opts.MaxSteps {
			return nil, &dynamo.IntegrationError{Step: attempts, Time: t, Dt: dt, Wrapped: dynamo.ErrMaxSteps}
		}
		attempts++

		if opts.MaxStep > 0 && dt > opts.MaxStep {
			dt = opts.MaxStep
		}
		last := false
		if t+dt >= t1 {
			dt = t1 - t
			last = true
		}

		xNew, errNorm, dtNext := rk.StepAdaptive(sys, x, t, dt, opts)
		result.Evaluations += rk45Stages
		valid := xNew.IsValid() && !math.IsNaN(errNorm)

		if valid && errNorm <= 1 {
			if opts.Observer != nil {
				opts.Observer.OnAccept(t, dt)
			}
			if last {
				t = t1
			} else {
				t += dt
			}
			x = xNew
			result.StepsTaken++
			result.Times = append(result.Times, t)
			result.States = append(result.States, x.Clone())
		} else {
			if opts.Observer != nil {
				opts.Observer.OnReject(t, dt)
			}
			result.Rejected++
		}

		if t >= t1 {
			break
		}

		dt = dtNext
		if dt < minStep(t, opts) {
			cause := dynamo.ErrStepTooSmall
			if !valid {
				cause = dynamo.ErrInvalidState
			}
			return nil, &dynamo.IntegrationError{Step: attempts, Time: t, Dt: dt, Wrapped: cause}
		}
	}

	return result, nil
}

// minStep is the smallest step that still advances t in floating point.
func minStep(t float64, opts dynamo.Options) float64 {
	floor := 16 * math.Abs(t) * 2.220446049250313e-16
	return math.Max(opts.MinStep, floor)
}

// initialStep picks a first step from the scale of the solution and its
// first two derivatives (Hairer, Norsett & Wanner, II.4).
func initialStep(sys dynamo.System, x0 dynamo.State, t0, t1 float64, opts dynamo.Options) float64 {
	n := len(x0)
	span := t1 - t0
	if n == 0 {
		return span
	}

	f0 := sys.Derive(x0, t0)
	scale := make([]float64, n)
	for i := range x0 {
		scale[i] = opts.AbsTol + opts.RelTol*math.Abs(x0[i])
	}

	d0, d1 := rms(x0, scale), rms(f0, scale)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, n)
	for i := range x0 {
		x1[i] = x0[i] + h0*f0[i]
	}
	f1 := sys.Derive(x1, t0+h0)
	diff := f1.Sub(f0)
	d2 := rms(diff, scale) / h0

	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 || math.IsNaN(m) {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 1.0/5.0)
	}

	h := math.Min(100*h0, h1)
	if opts.MaxStep > 0 {
		h = math.Min(h, opts.MaxStep)
	}
	return math.Min(h, span)
}

func rms(v []float64, scale []float64) float64 {
	sum := 0.0
	for i := range v {
		r := v[i] / scale[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(v)))
}

// SolveFixed integrates with a fixed-step method. The final step is
// shortened so the series ends exactly at t1.
func SolveFixed(stepper dynamo.Stepper, sys dynamo.System, x0 dynamo.State, t0, t1, dt float64) (*dynamo.Result, error) {
	if err := validateProblem(sys, x0, t0, t1); err != nil {
		return nil, err
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, dt)
	}
	steps := int(math.Ceil((t1-t0)/dt - 1e-9))
	if steps < 1 {
		steps = 1
	}
	if steps > maxFixedSteps {
		return nil, fmt.Errorf("%w: %d steps exceeds limit %d", dynamo.ErrParameterBounds, steps, maxFixedSteps)
	}

	result := &dynamo.Result{
		Times:   make([]float64, 0, steps+1),
		States:  make([]dynamo.State, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	x := x0.Clone()
	result.Times = append(result.Times, t0)
	result.States = append(result.States, x.Clone())

	for i := 0; i < steps; i++ {
		t := t0 + float64(i)*dt
		h := dt
		next := t0 + float64(i+1)*dt
		if i == steps-1 {
			next = t1
			h = t1 - t
		}
		x = stepper.Step(sys, x, t, h)
		if !x.IsValid() {
			return nil, &dynamo.IntegrationError{Step: i, Time: t, Dt: h, Wrapped: dynamo.ErrInvalidState}
		}
		result.StepsTaken++
		result.Times = append(result.Times, next)
		result.States = append(result.States, x.Clone())
	}
	return result, nil
}
