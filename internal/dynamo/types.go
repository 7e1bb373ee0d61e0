package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sum returns the total of all components, e.g. the whole population of a
// compartment model.
func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent ODE right-hand side dX/dt = f(X, t).
// Derive must return a fresh slice aligned with x.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Stepper interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveStepper interface {
	Stepper
	// StepAdaptive attempts one step and returns the candidate state, the
	// scaled error norm (accept when <= 1) and the proposed next step.
	StepAdaptive(sys System, x State, t, dt float64, opts Options) (State, float64, float64)
}

// StepObserver is notified of every accepted and rejected adaptive step.
type StepObserver interface {
	OnAccept(t, dt float64)
	OnReject(t, dt float64)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Options struct {
	RelTol      float64
	AbsTol      float64
	InitialStep float64
	MinStep     float64
	MaxStep     float64
	MaxSteps    int
	Observer    StepObserver
}

// DefaultMaxStep bounds adaptive steps unless Options.MaxStep overrides it.
// Long steps over a flat tail let atol-sized error flip the sign of a
// vanishing derivative.
const DefaultMaxStep = 10.0

func DefaultOptions() Options {
	return Options{
		RelTol:   1e-9,
		AbsTol:   1e-12,
		MinStep:  1e-12,
		MaxStep:  DefaultMaxStep,
		MaxSteps: 1_000_000,
	}
}

func (o Options) Validate() error {
	if o.RelTol <= 0 || o.AbsTol <= 0 {
		return fmt.Errorf("%w: tolerances must be positive (rtol=%g, atol=%g)", ErrParameterBounds, o.RelTol, o.AbsTol)
	}
	if o.MinStep < 0 || o.MaxStep < 0 || o.InitialStep < 0 {
		return fmt.Errorf("%w: step bounds must not be negative", ErrParameterBounds)
	}
	if o.MaxStep > 0 && o.MinStep > o.MaxStep {
		return fmt.Errorf("%w: min step %g exceeds max step %g", ErrParameterBounds, o.MinStep, o.MaxStep)
	}
	if o.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrParameterBounds, o.MaxSteps)
	}
	return nil
}

// Result is a time series of states; States[i] is aligned with Times[i] and
// each state is aligned with the system's component order.
type Result struct {
	Times       []float64
	States      []State
	Metrics     map[string]float64
	StepsTaken  int
	Rejected    int
	Evaluations int
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if r == nil || len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Component extracts the trajectory of the i-th state component.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}
