// Package network models population processes as directed bipartite
// multigraphs of species and transaction nodes.
//
// Arcs run species -> transaction (consumption) or transaction -> species
// (production). Parallel arcs are meaningful: the number of arcs between an
// ordered pair is the stoichiometric weight of that pair.
//
//	net := network.New("SIR")
//	net.AddSpecies("S", "I", "R")
//	net.AddTransaction("infect", network.WithRate(0.6), network.WithLabel(`\beta`))
//	net.AddEdges([2]string{"S", "infect"}, [2]string{"I", "infect"},
//	    [2]string{"infect", "I"}, [2]string{"infect", "I"})
//
// A Network is assembled once and then only read. Use [Network.Clone] or
// [Network.WithRates] to derive variants; clones never alias the source.
package network
