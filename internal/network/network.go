package network

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyID        = errors.New("network: empty node id")
	ErrDuplicateNode  = errors.New("network: duplicate node id")
	ErrUnknownNode    = errors.New("network: unknown node")
	ErrNotBipartite   = errors.New("network: edge must join a species and a transaction")
	ErrInvalidRate    = errors.New("network: rate constant must be finite")
	ErrNotTransaction = errors.New("network: node is not a transaction")
)

type Kind int

const (
	KindSpecies Kind = iota
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindSpecies:
		return "species"
	case KindTransaction:
		return "transaction"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Position is optional layout metadata; the rate-law compiler ignores it.
type Position struct {
	X, Y float64
}

// Node is a species or a transaction. Rate and label only exist on
// transactions and are both optional until an operation needs them.
type Node struct {
	ID   string
	Kind Kind

	rate  *float64
	label string
	pos   *Position
}

// Rate returns the numeric rate constant and whether one is set.
func (n Node) Rate() (float64, bool) {
	if n.rate == nil {
		return 0, false
	}
	return *n.rate, true
}

// Label returns the typeset form of the rate constant, e.g. `\beta`.
func (n Node) Label() (string, bool) {
	return n.label, n.label != ""
}

func (n Node) Position() (Position, bool) {
	if n.pos == nil {
		return Position{}, false
	}
	return *n.pos, true
}

func (n *Node) clone() *Node {
	c := &Node{ID: n.ID, Kind: n.Kind, label: n.label}
	if n.rate != nil {
		r := *n.rate
		c.rate = &r
	}
	if n.pos != nil {
		p := *n.pos
		c.pos = &p
	}
	return c
}

// Edge is one directed arc. Parallel arcs between the same ordered pair are
// told apart by Key, which counts from zero in insertion order.
type Edge struct {
	From string
	To   string
	Key  int
}

type pair struct{ from, to string }

type TransactionOption func(*Node)

func WithRate(rate float64) TransactionOption {
	return func(n *Node) {
		r := rate
		n.rate = &r
	}
}

func WithLabel(label string) TransactionOption {
	return func(n *Node) { n.label = label }
}

func WithPosition(x, y float64) TransactionOption {
	return func(n *Node) { n.pos = &Position{X: x, Y: y} }
}

// Network is a directed bipartite multigraph of species and transactions.
//
// Species() and Transactions() preserve insertion order; the species order is
// the component order of every state vector built from the network. Node ids
// are never renumbered or removed.
type Network struct {
	name         string
	nodes        map[string]*Node
	species      []string
	transactions []string
	edges        []Edge
	counts       map[pair]int
}

func New(name string) *Network {
	return &Network{
		name:   name,
		nodes:  make(map[string]*Node),
		counts: make(map[pair]int),
	}
}

func (n *Network) Name() string { return n.name }

func (n *Network) addNode(node *Node) error {
	if node.ID == "" {
		return ErrEmptyID
	}
	if _, ok := n.nodes[node.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, node.ID)
	}
	n.nodes[node.ID] = node
	if node.Kind == KindSpecies {
		n.species = append(n.species, node.ID)
	} else {
		n.transactions = append(n.transactions, node.ID)
	}
	return nil
}

// AddSpecies appends species in the given order.
func (n *Network) AddSpecies(ids ...string) error {
	for _, id := range ids {
		if err := n.addNode(&Node{ID: id, Kind: KindSpecies}); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) AddTransaction(id string, opts ...TransactionOption) error {
	node := &Node{ID: id, Kind: KindTransaction}
	for _, opt := range opts {
		opt(node)
	}
	if node.rate != nil && (math.IsNaN(*node.rate) || math.IsInf(*node.rate, 0)) {
		return fmt.Errorf("%w: transaction %q has rate %v", ErrInvalidRate, id, *node.rate)
	}
	return n.addNode(node)
}

// AddEdge adds one arc and returns its key among the parallel arcs of the
// same ordered pair.
func (n *Network) AddEdge(from, to string) (int, error) {
	src, ok := n.nodes[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, from)
	}
	dst, ok := n.nodes[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, to)
	}
	if src.Kind == dst.Kind {
		return 0, fmt.Errorf("%w: %s %q -> %s %q", ErrNotBipartite, src.Kind, from, dst.Kind, to)
	}
	p := pair{from, to}
	key := n.counts[p]
	n.counts[p] = key + 1
	n.edges = append(n.edges, Edge{From: from, To: to, Key: key})
	return key, nil
}

// AddEdges adds arcs given as (from, to) pairs and stops at the first error.
func (n *Network) AddEdges(arcs ...[2]string) error {
	for _, a := range arcs {
		if _, err := n.AddEdge(a[0], a[1]); err != nil {
			return err
		}
	}
	return nil
}

func (n *Network) SetRate(id string, rate float64) error {
	node, err := n.transaction(id)
	if err != nil {
		return err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: transaction %q has rate %v", ErrInvalidRate, id, rate)
	}
	node.rate = &rate
	return nil
}

func (n *Network) SetLabel(id, label string) error {
	node, err := n.transaction(id)
	if err != nil {
		return err
	}
	node.label = label
	return nil
}

func (n *Network) SetPosition(id string, x, y float64) error {
	node, ok := n.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	node.pos = &Position{X: x, Y: y}
	return nil
}

func (n *Network) transaction(id string) (*Node, error) {
	node, ok := n.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if node.Kind != KindTransaction {
		return nil, fmt.Errorf("%w: %q", ErrNotTransaction, id)
	}
	return node, nil
}

// Species returns species ids in insertion order.
func (n *Network) Species() []string {
	out := make([]string, len(n.species))
	copy(out, n.species)
	return out
}

// Transactions returns transaction ids in insertion order.
func (n *Network) Transactions() []string {
	out := make([]string, len(n.transactions))
	copy(out, n.transactions)
	return out
}

// SpeciesIndex returns the state-vector position of a species, or -1.
func (n *Network) SpeciesIndex(id string) int {
	for i, s := range n.species {
		if s == id {
			return i
		}
	}
	return -1
}

func (n *Network) Node(id string) (Node, bool) {
	node, ok := n.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node.clone(), true
}

// EdgeCount is the number of parallel arcs from -> to, zero if none or if
// either node is unknown.
func (n *Network) EdgeCount(from, to string) int {
	return n.counts[pair{from, to}]
}

// Edges returns all arcs in insertion order.
func (n *Network) Edges() []Edge {
	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Clone returns a deep copy sharing no mutable state with n.
func (n *Network) Clone() *Network {
	c := &Network{
		name:         n.name,
		nodes:        make(map[string]*Node, len(n.nodes)),
		species:      make([]string, len(n.species)),
		transactions: make([]string, len(n.transactions)),
		edges:        make([]Edge, len(n.edges)),
		counts:       make(map[pair]int, len(n.counts)),
	}
	for id, node := range n.nodes {
		c.nodes[id] = node.clone()
	}
	copy(c.species, n.species)
	copy(c.transactions, n.transactions)
	copy(c.edges, n.edges)
	for p, k := range n.counts {
		c.counts[p] = k
	}
	return c
}

// WithRates returns a clone whose listed transactions carry new rate
// constants. n is left untouched.
func (n *Network) WithRates(rates map[string]float64) (*Network, error) {
	c := n.Clone()
	for id, r := range rates {
		if err := c.SetRate(id, r); err != nil {
			return nil, err
		}
	}
	return c, nil
}
