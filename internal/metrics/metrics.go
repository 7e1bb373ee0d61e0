package metrics

import (
	"math"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// Conservation tracks the largest absolute drift of the total population
// sum(x) from its first observed value.
type Conservation struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewConservation() *Conservation {
	return &Conservation{name: "conservation_drift"}
}

func (c *Conservation) Name() string { return c.name }

func (c *Conservation) Observe(x dynamo.State, t float64) {
	total := x.Sum()
	if c.samples == 0 {
		c.initial = total
	}
	c.samples++
	c.maxDrift = math.Max(c.maxDrift, math.Abs(total-c.initial))
}

func (c *Conservation) Value() float64 {
	return c.maxDrift
}

func (c *Conservation) Reset() {
	c.initial = 0
	c.maxDrift = 0
	c.samples = 0
}

// Peak records the largest value a single component reaches, and when.
type Peak struct {
	name    string
	index   int
	peak    float64
	at      float64
	samples int
}

func NewPeak(species string, index int) *Peak {
	return &Peak{
		name:  "peak_" + species,
		index: index,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index < 0 || p.index >= len(x) {
		return
	}
	if p.samples == 0 || x[p.index] > p.peak {
		p.peak = x[p.index]
		p.at = t
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.peak }

// Time is the time at which the peak was first reached.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.peak = 0
	p.at = 0
	p.samples = 0
}

// Final keeps the last observed value of one component.
type Final struct {
	name  string
	index int
	last  float64
}

func NewFinal(species string, index int) *Final {
	return &Final{
		name:  "final_" + species,
		index: index,
	}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x dynamo.State, t float64) {
	if f.index < 0 || f.index >= len(x) {
		return
	}
	f.last = x[f.index]
}

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = 0 }

// Apply feeds every sample of r through ms and stores the values in
// r.Metrics under each metric's name.
func Apply(r *dynamo.Result, ms ...dynamo.Metric) {
	if r == nil {
		return
	}
	if r.Metrics == nil {
		r.Metrics = make(map[string]float64, len(ms))
	}
	for _, m := range ms {
		m.Reset()
		for i, x := range r.States {
			m.Observe(x, r.Times[i])
		}
		r.Metrics[m.Name()] = m.Value()
	}
}
