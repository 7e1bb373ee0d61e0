package export

import (
	"fmt"
	"os"

	"github.com/emicklei/dot"

	"github.com/san-kum/ratenet/internal/network"
	"github.com/san-kum/ratenet/internal/ratelaw"
)

// layoutScale converts network layout units to Graphviz inches.
const layoutScale = 2.0

// DOT renders net as a Graphviz digraph: species as circles, transactions
// as boxes labelled with their rate, one arc per parallel edge. Layout
// positions become pinned pos attributes for neato.
func DOT(net *network.Network) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("label", net.Name())
	g.Attr("rankdir", "LR")

	nodes := make(map[string]dot.Node)
	for _, id := range net.Species() {
		n := g.Node(id).Attr("shape", "circle")
		pin(n, net, id)
		nodes[id] = n
	}
	for _, id := range net.Transactions() {
		n := g.Node(id).Box()
		node, _ := net.Node(id)
		if r, ok := node.Rate(); ok {
			n.Label(fmt.Sprintf("%s\n%s", id, ratelaw.FormatNumber(r)))
		}
		pin(n, net, id)
		nodes[id] = n
	}

	for _, e := range net.Edges() {
		g.Edge(nodes[e.From], nodes[e.To])
	}
	return g.String()
}

func pin(n dot.Node, net *network.Network, id string) {
	node, _ := net.Node(id)
	if p, ok := node.Position(); ok {
		n.Attr("pos", fmt.Sprintf("%g,%g!", p.X*layoutScale, p.Y*layoutScale))
	}
}

// WriteDOT writes the DOT rendering of net to path.
func WriteDOT(path string, net *network.Network) error {
	return os.WriteFile(path, []byte(DOT(net)), 0644)
}

// WriteDocument writes a standalone amsmath document with the rate laws of
// net. It does not run LaTeX.
func WriteDocument(path string, net *network.Network, mode ratelaw.Mode) error {
	doc, err := ratelaw.Document(net, mode)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0644)
}
