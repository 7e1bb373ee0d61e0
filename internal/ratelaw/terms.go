package ratelaw

import (
	"errors"
	"fmt"

	"github.com/san-kum/ratenet/internal/network"
	"github.com/san-kum/ratenet/internal/stoich"
)

var (
	// ErrMalformedNetwork is wrapped whenever a node lacks an attribute the
	// requested output needs.
	ErrMalformedNetwork = errors.New("ratelaw: malformed network")

	ErrMissingRateConstant  = fmt.Errorf("%w: missing rate constant", ErrMalformedNetwork)
	ErrMissingSymbolicLabel = fmt.Errorf("%w: missing symbolic label", ErrMalformedNetwork)

	ErrUnknownSpecies = errors.New("ratelaw: unknown species")
)

// MissingAttributeError names the transaction that lacks a rate constant or
// label.
type MissingAttributeError struct {
	Transaction string
	Wrapped     error
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("%s on transaction %q", e.Wrapped.Error(), e.Transaction)
}

func (e *MissingAttributeError) Unwrap() error {
	return e.Wrapped
}

// Term is one signed mass-action term of a species' rate law:
// Coefficient * k(Transaction) * prod(Reactants).
type Term struct {
	Coefficient int
	Transaction string
	Reactants   []stoich.Reactant
}

// Terms returns the rate law of species as an ordered list of terms, one per
// transaction with a nonzero net coefficient, in transaction order. A species
// touched by no transaction yields an empty list.
func Terms(net *network.Network, species string) []Term {
	var out []Term
	for _, tx := range net.Transactions() {
		c := stoich.Term(net, species, tx)
		if c.Zero() {
			continue
		}
		out = append(out, Term{
			Coefficient: c.Net,
			Transaction: tx,
			Reactants:   c.Reactants,
		})
	}
	return out
}

func rateConstant(net *network.Network, tx string) (float64, error) {
	node, _ := net.Node(tx)
	r, ok := node.Rate()
	if !ok {
		return 0, &MissingAttributeError{Transaction: tx, Wrapped: ErrMissingRateConstant}
	}
	return r, nil
}

func symbolicLabel(net *network.Network, tx string) (string, error) {
	node, _ := net.Node(tx)
	l, ok := node.Label()
	if !ok {
		return "", &MissingAttributeError{Transaction: tx, Wrapped: ErrMissingSymbolicLabel}
	}
	return l, nil
}
