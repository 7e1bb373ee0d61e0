package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSIR(t *testing.T) *Network {
	t.Helper()
	net := New("SIR")
	require.NoError(t, net.AddSpecies("S", "I", "R"))
	require.NoError(t, net.AddTransaction("infect", WithRate(0.6), WithLabel(`\beta`), WithPosition(0.5, 0)))
	require.NoError(t, net.AddTransaction("recover", WithRate(0.2), WithLabel(`\gamma`)))
	require.NoError(t, net.AddEdges(
		[2]string{"S", "infect"},
		[2]string{"I", "infect"},
		[2]string{"infect", "I"},
		[2]string{"infect", "I"},
		[2]string{"I", "recover"},
		[2]string{"recover", "R"},
	))
	return net
}

func TestOrderIsInsertionOrder(t *testing.T) {
	net := buildSIR(t)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"S", "I", "R"}, net.Species())
		assert.Equal(t, []string{"infect", "recover"}, net.Transactions())
	}
	assert.Equal(t, 1, net.SpeciesIndex("I"))
	assert.Equal(t, -1, net.SpeciesIndex("infect"))
	assert.Equal(t, -1, net.SpeciesIndex("X"))
}

func TestEdgeCount(t *testing.T) {
	net := buildSIR(t)
	tests := []struct {
		from, to string
		want     int
	}{
		{"infect", "I", 2},
		{"I", "infect", 1},
		{"S", "infect", 1},
		{"infect", "S", 0},
		{"R", "recover", 0},
		{"nope", "infect", 0},
	}
	for _, tc := range tests {
		assert.Equalf(t, tc.want, net.EdgeCount(tc.from, tc.to), "EdgeCount(%s, %s)", tc.from, tc.to)
	}
}

func TestParallelEdgesAreKeyed(t *testing.T) {
	net := buildSIR(t)
	var keys []int
	for _, e := range net.Edges() {
		if e.From == "infect" && e.To == "I" {
			keys = append(keys, e.Key)
		}
	}
	assert.Equal(t, []int{0, 1}, keys)

	key, err := net.AddEdge("infect", "I")
	require.NoError(t, err)
	assert.Equal(t, 2, key)
	assert.Equal(t, 3, net.EdgeCount("infect", "I"))
}

func TestConstructionErrors(t *testing.T) {
	net := buildSIR(t)

	assert.ErrorIs(t, net.AddSpecies("S"), ErrDuplicateNode)
	assert.ErrorIs(t, net.AddTransaction("S"), ErrDuplicateNode)
	assert.ErrorIs(t, net.AddSpecies(""), ErrEmptyID)
	assert.ErrorIs(t, net.AddTransaction("bad", WithRate(math.NaN())), ErrInvalidRate)
	assert.ErrorIs(t, net.AddTransaction("worse", WithRate(math.Inf(1))), ErrInvalidRate)

	_, err := net.AddEdge("S", "I")
	assert.ErrorIs(t, err, ErrNotBipartite)
	_, err = net.AddEdge("infect", "recover")
	assert.ErrorIs(t, err, ErrNotBipartite)
	_, err = net.AddEdge("S", "ghost")
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.ErrorIs(t, net.SetRate("S", 1), ErrNotTransaction)
	assert.ErrorIs(t, net.SetRate("ghost", 1), ErrUnknownNode)
	assert.ErrorIs(t, net.SetRate("infect", math.NaN()), ErrInvalidRate)
}

func TestNodeAttributes(t *testing.T) {
	net := New("partial")
	require.NoError(t, net.AddSpecies("A"))
	require.NoError(t, net.AddTransaction("t"))

	node, ok := net.Node("t")
	require.True(t, ok)
	assert.Equal(t, KindTransaction, node.Kind)
	_, hasRate := node.Rate()
	_, hasLabel := node.Label()
	_, hasPos := node.Position()
	assert.False(t, hasRate)
	assert.False(t, hasLabel)
	assert.False(t, hasPos)

	require.NoError(t, net.SetRate("t", 0.25))
	require.NoError(t, net.SetLabel("t", `\kappa`))
	require.NoError(t, net.SetPosition("A", 1, 2))

	node, _ = net.Node("t")
	r, _ := node.Rate()
	l, _ := node.Label()
	assert.Equal(t, 0.25, r)
	assert.Equal(t, `\kappa`, l)

	a, _ := net.Node("A")
	p, ok := a.Position()
	assert.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, p)

	_, ok = net.Node("ghost")
	assert.False(t, ok)
}

func TestCloneIndependence(t *testing.T) {
	net := buildSIR(t)
	clone := net.Clone()

	require.NoError(t, clone.SetRate("infect", 0.3))
	require.NoError(t, clone.SetLabel("infect", `\beta'`))
	require.NoError(t, clone.SetPosition("infect", 9, 9))
	require.NoError(t, clone.AddSpecies("D"))
	require.NoError(t, clone.AddTransaction("death", WithRate(0.003)))
	_, err := clone.AddEdge("I", "death")
	require.NoError(t, err)

	orig, _ := net.Node("infect")
	r, _ := orig.Rate()
	l, _ := orig.Label()
	p, _ := orig.Position()
	assert.Equal(t, 0.6, r)
	assert.Equal(t, `\beta`, l)
	assert.Equal(t, Position{X: 0.5, Y: 0}, p)
	assert.Equal(t, []string{"S", "I", "R"}, net.Species())
	assert.Equal(t, 0, net.EdgeCount("I", "death"))
	assert.Len(t, net.Edges(), 6)

	assert.Equal(t, net.Name(), clone.Name())
	assert.Equal(t, 2, clone.EdgeCount("infect", "I"))
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	net := buildSIR(t)
	sp := net.Species()
	sp[0] = "X"
	edges := net.Edges()
	edges[0].From = "X"
	assert.Equal(t, "S", net.Species()[0])
	assert.Equal(t, "S", net.Edges()[0].From)
}

func TestWithRates(t *testing.T) {
	net := buildSIR(t)

	variant, err := net.WithRates(map[string]float64{"infect": 0.3, "recover": 0.12})
	require.NoError(t, err)

	vi, _ := variant.Node("infect")
	r, _ := vi.Rate()
	assert.Equal(t, 0.3, r)

	oi, _ := net.Node("infect")
	r, _ = oi.Rate()
	assert.Equal(t, 0.6, r)

	_, err = net.WithRates(map[string]float64{"ghost": 1})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "species", KindSpecies.String())
	assert.Equal(t, "transaction", KindTransaction.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}
