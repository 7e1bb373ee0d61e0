package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	sys := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(sys, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-7 {
		t.Errorf("RK45 drifted: got %.12f, want %.12f", x[0], math.Cos(10))
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	sys := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := sys.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(sys, x, float64(i)*dt, dt)
	}

	drift := math.Abs(sys.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	sys := &harmonicOscillator{}
	opts := dynamo.DefaultOptions()
	opts.RelTol = 1e-8
	opts.AbsTol = 1e-8

	x, errNorm, newDt := integrator.StepAdaptive(sys, dynamo.State{1.0, 0.0}, 0, 0.1, opts)

	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if errNorm < 0 || math.IsNaN(errNorm) {
		t.Errorf("StepAdaptive returned invalid error norm: %g", errNorm)
	}
	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}
}

func TestRK45_ControllerShrinksOnLargeError(t *testing.T) {
	integrator := NewRK45()
	sys := &harmonicOscillator{}
	opts := dynamo.DefaultOptions()

	_, errNorm, newDt := integrator.StepAdaptive(sys, dynamo.State{1.0, 0.0}, 0, 1.0, opts)
	if errNorm <= 1 {
		t.Fatalf("expected a rejected step at dt=1 with rtol=1e-9, got error %g", errNorm)
	}
	if newDt >= 1.0 || newDt < 0.2 {
		t.Errorf("rejected step should shrink within [0.2, 1), got %g", newDt)
	}
}

func TestRK45_ScaleBounds(t *testing.T) {
	r := NewRK45()
	tests := []struct {
		err  float64
		want float64
	}{
		{0, 10},
		{math.NaN(), 0.2},
		{math.Inf(1), 0.2},
		{1e12, 0.2},
		{1e-12, 10},
	}
	for _, tt := range tests {
		if got := r.scale(tt.err); got != tt.want {
			t.Errorf("scale(%g) = %g, want %g", tt.err, got, tt.want)
		}
	}
	if s := r.scale(4); s >= 1 {
		t.Errorf("rejected step grew: %g", s)
	}
}

func TestRK45_VsRK4_Accuracy(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	sys := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x4 := x0.Clone()
	x45 := x0.Clone()
	dt := 0.1

	for i := 0; i < 100; i++ {
		x4 = rk4.Step(sys, x4, float64(i)*dt, dt)
		x45 = rk45.Step(sys, x45, float64(i)*dt, dt)
	}

	e4 := math.Abs(x4[0] - math.Cos(10))
	e45 := math.Abs(x45[0] - math.Cos(10))
	t.Logf("RK4 error %.3e, RK45 error %.3e", e4, e45)

	if e45 > e4 {
		t.Errorf("fifth-order solution less accurate than RK4: %.3e > %.3e", e45, e4)
	}
}
