package ratelaw

import (
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/network"
)

type factor struct {
	index int
	power int
}

// boundTerm is a Term with its rate constant folded into the coefficient.
type boundTerm struct {
	weight  float64
	factors []factor
}

type compiledEquation struct {
	species string
	terms   []Term
	bound   []boundTerm
}

// System is the executable form of a network's rate laws. Its state vector
// is ordered like net.Species() at compile time; later changes to the
// network are not seen.
type System struct {
	name      string
	equations []compiledEquation
}

var _ dynamo.System = (*System)(nil)

// Compile binds every species' term list to the live rate constants. It
// fails with ErrMissingRateConstant naming the first transaction, in
// transaction order, that has no rate.
func Compile(net *network.Network) (*System, error) {
	rates := make(map[string]float64)
	for _, tx := range net.Transactions() {
		r, err := rateConstant(net, tx)
		if err != nil {
			return nil, err
		}
		rates[tx] = r
	}

	species := net.Species()
	sys := &System{
		name:      net.Name(),
		equations: make([]compiledEquation, len(species)),
	}
	for i, s := range species {
		terms := Terms(net, s)
		bound := make([]boundTerm, len(terms))
		for j, term := range terms {
			fs := make([]factor, len(term.Reactants))
			for k, r := range term.Reactants {
				fs[k] = factor{index: r.Index, power: r.Multiplicity}
			}
			bound[j] = boundTerm{
				weight:  float64(term.Coefficient) * rates[term.Transaction],
				factors: fs,
			}
		}
		sys.equations[i] = compiledEquation{species: s, terms: terms, bound: bound}
	}
	return sys, nil
}

func (s *System) Name() string { return s.name }

func (s *System) StateDim() int { return len(s.equations) }

// Species returns the component order of the state vector.
func (s *System) Species() []string {
	out := make([]string, len(s.equations))
	for i, eq := range s.equations {
		out[i] = eq.species
	}
	return out
}

// Terms returns the term list the i-th equation was compiled from.
func (s *System) Terms(i int) []Term {
	if i < 0 || i >= len(s.equations) {
		return nil
	}
	out := make([]Term, len(s.equations[i].terms))
	copy(out, s.equations[i].terms)
	return out
}

// Derive evaluates every rate law at x. t is ignored: mass-action systems
// are autonomous.
func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(s.equations))
	for i, eq := range s.equations {
		sum := 0.0
		for _, bt := range eq.bound {
			v := bt.weight
			for _, f := range bt.factors {
				v *= ipow(x[f.index], f.power)
			}
			sum += v
		}
		dx[i] = sum
	}
	return dx
}

// Rate has the (time, state) -> derivative argument order of IVP solvers.
func (s *System) Rate(t float64, x dynamo.State) dynamo.State {
	return s.Derive(x, t)
}

func ipow(x float64, n int) float64 {
	result := 1.0
	for ; n > 0; n-- {
		result *= x
	}
	return result
}
