// Package stoich reads stoichiometric coefficients and mass-action reactant
// multiplicities off a reaction network's arc counts.
package stoich

import "github.com/san-kum/ratenet/internal/network"

// Reactant is one factor of a mass-action product: Species^Multiplicity.
// Index is the species' position in the network's state vector.
type Reactant struct {
	Species      string
	Index        int
	Multiplicity int
}

// Contribution describes what one transaction does to one species.
type Contribution struct {
	Species     string
	Transaction string
	// Net is production arcs minus consumption arcs.
	Net int
	// Reactants lists every species with at least one arc into the
	// transaction, in species order, whether or not it is also produced.
	Reactants []Reactant
}

// Zero reports whether the transaction leaves the species unchanged. Such a
// contribution is absent from the rate law, not a zero-valued term.
func (c Contribution) Zero() bool { return c.Net == 0 }

// Term computes the contribution of transaction to species. Unknown ids
// simply count zero arcs.
func Term(net *network.Network, species, transaction string) Contribution {
	produced := net.EdgeCount(transaction, species)
	consumed := net.EdgeCount(species, transaction)
	return Contribution{
		Species:     species,
		Transaction: transaction,
		Net:         produced - consumed,
		Reactants:   Reactants(net, transaction),
	}
}

// Reactants returns the mass-action reactant multiset of a transaction.
// It depends only on consumption arcs.
func Reactants(net *network.Network, transaction string) []Reactant {
	var out []Reactant
	for i, s := range net.Species() {
		if m := net.EdgeCount(s, transaction); m > 0 {
			out = append(out, Reactant{Species: s, Index: i, Multiplicity: m})
		}
	}
	return out
}

// Matrix returns the net stoichiometry matrix: one row per species, one
// column per transaction, both in network order.
func Matrix(net *network.Network) [][]int {
	species := net.Species()
	transactions := net.Transactions()
	m := make([][]int, len(species))
	for i, s := range species {
		m[i] = make([]int, len(transactions))
		for j, t := range transactions {
			m[i][j] = net.EdgeCount(t, s) - net.EdgeCount(s, t)
		}
	}
	return m
}

// Conserved reports whether sum(weights[i] * x[i]) is invariant under every
// transaction, i.e. weights is a left null vector of the stoichiometry
// matrix. weights must be aligned with the species order.
func Conserved(net *network.Network, weights []float64) bool {
	m := Matrix(net)
	if len(weights) != len(m) {
		return false
	}
	cols := len(net.Transactions())
	for j := 0; j < cols; j++ {
		dot := 0.0
		for i := range m {
			dot += weights[i] * float64(m[i][j])
		}
		if dot != 0 {
			return false
		}
	}
	return true
}
