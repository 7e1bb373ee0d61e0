package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// SolverStats exports adaptive step counts and step sizes as prometheus
// collectors. It is a dynamo.StepObserver.
type SolverStats struct {
	Accepted prometheus.Counter
	Rejected prometheus.Counter
	StepSize prometheus.Histogram
}

var _ dynamo.StepObserver = (*SolverStats)(nil)

// NewSolverStats builds the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewSolverStats(reg prometheus.Registerer) (*SolverStats, error) {
	s := &SolverStats{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ratenet",
			Subsystem: "solver",
			Name:      "steps_accepted_total",
			Help:      "Adaptive steps accepted by the error controller.",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ratenet",
			Subsystem: "solver",
			Name:      "steps_rejected_total",
			Help:      "Adaptive steps rejected by the error controller.",
		}),
		StepSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ratenet",
			Subsystem: "solver",
			Name:      "step_size",
			Help:      "Size of accepted steps in model time units.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 9),
		}),
	}
	if reg == nil {
		return s, nil
	}
	for _, c := range []prometheus.Collector{s.Accepted, s.Rejected, s.StepSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SolverStats) OnAccept(t, dt float64) {
	s.Accepted.Inc()
	s.StepSize.Observe(dt)
}

func (s *SolverStats) OnReject(t, dt float64) {
	s.Rejected.Inc()
}
