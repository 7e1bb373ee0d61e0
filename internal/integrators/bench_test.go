package integrators

import (
	"testing"

	"github.com/san-kum/ratenet/internal/dynamo"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	sys := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	sys := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	sys := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

type benchChain struct{ n int }

func (b *benchChain) StateDim() int { return b.n }

// Derive is a linear decay chain x0 -> x1 -> ... -> x(n-1).
func (b *benchChain) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, b.n)
	for i := 0; i < b.n; i++ {
		dx[i] = -0.1 * x[i]
		if i > 0 {
			dx[i] += 0.1 * x[i-1]
		}
	}
	dx[b.n-1] += 0.1 * x[b.n-1]
	return dx
}

func BenchmarkSolve_Chain20(b *testing.B) {
	sys := &benchChain{n: 20}
	x0 := make(dynamo.State, 20)
	x0[0] = 1
	opts := dynamo.DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Solve(sys, x0, 0, 100, opts); err != nil {
			b.Fatal(err)
		}
	}
}
