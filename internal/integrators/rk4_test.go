package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
)

type decay struct{ k float64 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.k * x[0]}
}

func (d *decay) StateDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	sys := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	sys := &decay{k: 1}
	integ := NewEuler()

	x := integ.Step(sys, dynamo.State{1.0}, 0, 0.1)
	if math.Abs(x[0]-0.9) > 1e-15 {
		t.Errorf("Euler step = %v, want 0.9", x[0])
	}
}
