package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/network"
)

var ErrNoVariants = errors.New("sweep: no variants")

// Variant is one set of rate overrides layered on the base configuration.
type Variant struct {
	Name  string
	Rates map[string]float64
}

type Outcome struct {
	Variant Variant
	Result  *dynamo.Result
}

// VariantError identifies which variant of a sweep failed.
type VariantError struct {
	Index   int
	Name    string
	Wrapped error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %d (%s): %s", e.Index, e.Name, e.Wrapped)
}

func (e *VariantError) Unwrap() error { return e.Wrapped }

type Sweep struct {
	net        *network.Network
	base       experiment.Config
	newStepper func() dynamo.Stepper
	newMetrics func(*network.Network) []dynamo.Metric
	limit      int
	logger     *slog.Logger
}

type Option func(*Sweep)

// WithConcurrency bounds the number of variants integrated at once.
func WithConcurrency(n int) Option {
	return func(s *Sweep) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sweep) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the per-variant metric factory. Each variant gets its
// own metric instances.
func WithMetrics(fn func(*network.Network) []dynamo.Metric) Option {
	return func(s *Sweep) { s.newMetrics = fn }
}

// New prepares a sweep of net under base. newStepper is called once per
// variant; nil selects the adaptive solver.
func New(net *network.Network, base experiment.Config, newStepper func() dynamo.Stepper, opts ...Option) *Sweep {
	s := &Sweep{
		net:        net,
		base:       base,
		newStepper: newStepper,
		limit:      runtime.GOMAXPROCS(0),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run integrates every variant concurrently and returns the outcomes in
// input order. The first failure cancels the rest and is returned as a
// *VariantError. The source network is only read.
func (s *Sweep) Run(ctx context.Context, variants []Variant) ([]Outcome, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	outcomes := make([]Outcome, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, v := range variants {
		g.Go(func() error {
			result, err := s.runOne(gctx, v)
			if err != nil {
				s.logger.Warn("variant failed", "index", i, "variant", v.Name, "err", err)
				return &VariantError{Index: i, Name: v.Name, Wrapped: err}
			}
			s.logger.Debug("variant done", "index", i, "variant", v.Name,
				"steps", result.StepsTaken, "rejected", result.Rejected)
			outcomes[i] = Outcome{Variant: v, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *Sweep) runOne(ctx context.Context, v Variant) (*dynamo.Result, error) {
	cfg := s.base
	cfg.InitState = append([]float64(nil), s.base.InitState...)
	cfg.Rates = make(map[string]float64, len(s.base.Rates)+len(v.Rates))
	for id, r := range s.base.Rates {
		cfg.Rates[id] = r
	}
	for id, r := range v.Rates {
		cfg.Rates[id] = r
	}

	var stepper dynamo.Stepper
	if s.newStepper != nil {
		stepper = s.newStepper()
	}
	var ms []dynamo.Metric
	if s.newMetrics != nil {
		ms = s.newMetrics(s.net)
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(s.net, stepper, ms); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// Best returns the outcome with the smallest value of a metric. Outcomes
// missing the metric are skipped.
func Best(outcomes []Outcome, metric string) (Outcome, bool) {
	best := math.Inf(1)
	var out Outcome
	found := false
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		val, ok := o.Result.Metrics[metric]
		if !ok {
			continue
		}
		if !found || val < best {
			best = val
			out = o
			found = true
		}
	}
	return out, found
}
