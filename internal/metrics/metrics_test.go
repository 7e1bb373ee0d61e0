package metrics

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/san-kum/ratenet/internal/dynamo"
)

func TestConservation(t *testing.T) {
	m := NewConservation()
	m.Observe(dynamo.State{0.9, 0.1, 0}, 0)
	m.Observe(dynamo.State{0.5, 0.3, 0.2}, 1)
	if m.Value() > 1e-15 {
		t.Errorf("expected no drift, got %g", m.Value())
	}

	m.Observe(dynamo.State{0.5, 0.3, 0.25}, 2)
	if math.Abs(m.Value()-0.05) > 1e-12 {
		t.Errorf("expected drift 0.05, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestPeak(t *testing.T) {
	p := NewPeak("I", 1)
	if p.Name() != "peak_I" {
		t.Errorf("unexpected name %q", p.Name())
	}
	for i, v := range []float64{0.1, 0.4, 0.7, 0.2} {
		p.Observe(dynamo.State{0, v}, float64(i))
	}
	if p.Value() != 0.7 || p.Time() != 2 {
		t.Errorf("peak = %g at %g, want 0.7 at 2", p.Value(), p.Time())
	}

	// out-of-range index is ignored
	q := NewPeak("Z", 5)
	q.Observe(dynamo.State{1, 2}, 0)
	if q.Value() != 0 {
		t.Errorf("expected 0, got %g", q.Value())
	}
}

func TestPeakNegativeValues(t *testing.T) {
	p := NewPeak("x", 0)
	p.Observe(dynamo.State{-3}, 0)
	p.Observe(dynamo.State{-1}, 1)
	if p.Value() != -1 {
		t.Errorf("peak = %g, want -1", p.Value())
	}
}

func TestApply(t *testing.T) {
	r := &dynamo.Result{
		Times:  []float64{0, 1, 2},
		States: []dynamo.State{{1, 0}, {0.5, 0.5}, {0.2, 0.8}},
	}
	Apply(r, NewConservation(), NewFinal("R", 1), NewPeak("S", 0))

	if r.Metrics["final_R"] != 0.8 {
		t.Errorf("final_R = %g", r.Metrics["final_R"])
	}
	if r.Metrics["peak_S"] != 1 {
		t.Errorf("peak_S = %g", r.Metrics["peak_S"])
	}
	if d := r.Metrics["conservation_drift"]; d > 1e-15 {
		t.Errorf("conservation_drift = %g", d)
	}

	Apply(nil, NewConservation())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestSolverStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewSolverStats(reg)
	if err != nil {
		t.Fatal(err)
	}

	s.OnAccept(0, 0.1)
	s.OnAccept(0.1, 0.2)
	s.OnReject(0.3, 1.0)

	if got := counterValue(t, s.Accepted); got != 2 {
		t.Errorf("accepted = %g, want 2", got)
	}
	if got := counterValue(t, s.Rejected); got != 1 {
		t.Errorf("rejected = %g, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ratenet_solver_steps_accepted_total",
		"ratenet_solver_steps_rejected_total",
		"ratenet_solver_step_size",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}

	if _, err := NewSolverStats(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestSolverStatsUnregistered(t *testing.T) {
	s, err := NewSolverStats(nil)
	if err != nil {
		t.Fatal(err)
	}
	s.OnReject(0, 1)
	if got := counterValue(t, s.Rejected); got != 1 {
		t.Errorf("rejected = %g, want 1", got)
	}
}
