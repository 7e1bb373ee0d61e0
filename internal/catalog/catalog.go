package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/ratenet/internal/network"
)

var ErrUnknownModel = errors.New("catalog: unknown model")

// seedInfected is the default initial infected proportion.
const seedInfected = 3e-8

type builder func() *network.Network

var builders = map[string]builder{
	"sir":    SIR,
	"sird":   SIRD,
	"sirds":  SIRDS,
	"sirds2": SIRDS2,
}

// Names lists the built-in models in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns a fresh network for a named model. Names are the lowercase
// forms returned by Names.
func Build(name string) (*network.Network, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return b(), nil
}

// InitialState returns the default initial proportions for a model: every
// susceptible compartment near 1, every infected compartment seeded, the
// rest empty. The order follows the model's species.
func InitialState(name string) ([]float64, error) {
	net, err := Build(name)
	if err != nil {
		return nil, err
	}
	species := net.Species()
	x0 := make([]float64, len(species))
	for i, s := range species {
		switch s[0] {
		case 'S':
			x0[i] = 1 - seedInfected
		case 'I':
			x0[i] = seedInfected
		}
	}
	return x0, nil
}

// SIR is the basic susceptible-infected-recovered model.
func SIR() *network.Network {
	net := network.New("SIR")
	must(net.AddSpecies("S", "I", "R"))
	must(net.AddTransaction("infect", network.WithRate(0.6), network.WithLabel(`\beta`), network.WithPosition(0.5, 0)))
	must(net.AddTransaction("recover", network.WithRate(0.2), network.WithLabel(`\gamma`), network.WithPosition(1.5, 0)))
	must(net.AddEdges(infection("S", "I", "infect")...))
	must(net.AddEdges(
		[2]string{"I", "recover"},
		[2]string{"recover", "R"},
	))
	place(net, map[string]network.Position{"S": {X: 0}, "I": {X: 1}, "R": {X: 2}})
	return net
}

// SIRD adds a death compartment to SIR.
func SIRD() *network.Network {
	net := network.New("SIRD")
	must(net.AddSpecies("S", "I", "R", "D"))
	must(net.AddTransaction("infect", network.WithRate(0.6), network.WithLabel(`\beta`), network.WithPosition(0.5, 0)))
	must(net.AddTransaction("recover", network.WithRate(0.2), network.WithLabel(`\gamma`), network.WithPosition(1.5, 0.2)))
	must(net.AddTransaction("death", network.WithRate(0.003), network.WithLabel(`\delta`), network.WithPosition(1.5, -0.2)))
	must(net.AddEdges(infection("S", "I", "infect")...))
	must(net.AddEdges(
		[2]string{"I", "recover"},
		[2]string{"recover", "R"},
		[2]string{"I", "death"},
		[2]string{"death", "D"},
	))
	place(net, map[string]network.Position{
		"S": {X: 0}, "I": {X: 1}, "R": {X: 2, Y: 0.2}, "D": {X: 2, Y: -0.2},
	})
	return net
}

// SIRDS adds waning immunity (R back to S) to SIRD.
func SIRDS() *network.Network {
	net := network.New("SIRDS")
	must(net.AddSpecies("S", "I", "R", "D"))
	must(net.AddTransaction("infect", network.WithRate(0.6), network.WithLabel(`\beta`), network.WithPosition(0.5, 0)))
	must(net.AddTransaction("recover", network.WithRate(0.2), network.WithLabel(`\gamma`), network.WithPosition(1.5, 0.2)))
	must(net.AddTransaction("death", network.WithRate(0.003), network.WithLabel(`\delta`), network.WithPosition(1.5, -0.2)))
	must(net.AddTransaction("waning", network.WithRate(0.006), network.WithLabel(`\omega`), network.WithPosition(0.8, 0.4)))
	must(net.AddEdges(sirdsArcs("", func(tx string) string { return tx })...))
	place(net, map[string]network.Position{
		"S": {X: 0}, "I": {X: 1}, "R": {X: 2, Y: 0.2}, "D": {X: 2, Y: -0.2},
	})
	return net
}

type cohortRates struct {
	infect, recover, death, waning float64
}

// SIRDS2 is SIRDS over two age cohorts, young (y) and old (o), with
// cross-cohort infection.
func SIRDS2() *network.Network {
	net := network.New("SIRDS2")
	must(net.AddSpecies("Sy", "Iy", "Ry", "Dy"))
	must(net.AddSpecies("So", "Io", "Ro", "Do"))

	cohorts := []struct {
		suffix string
		rates  cohortRates
		y      float64
	}{
		{"o", cohortRates{0.3, 0.2, 0.009, 0.006}, 1},
		{"y", cohortRates{1.2, 0.2, 0.001, 0.006}, -1},
	}
	for _, c := range cohorts {
		sub := c.suffix + c.suffix
		y := c.y
		must(net.AddTransaction("i_"+sub, network.WithRate(c.rates.infect),
			network.WithLabel(`\beta_{`+sub+`}`), network.WithPosition(1, y)))
		must(net.AddTransaction("r_"+sub, network.WithRate(c.rates.recover),
			network.WithLabel(`\gamma_{`+sub+`}`), network.WithPosition(3, 1.4*y)))
		must(net.AddTransaction("d_"+sub, network.WithRate(c.rates.death),
			network.WithLabel(`\delta_{`+sub+`}`), network.WithPosition(3, 0.6*y)))
		must(net.AddTransaction("w_"+sub, network.WithRate(c.rates.waning),
			network.WithLabel(`\omega_{`+sub+`}`), network.WithPosition(1.6, 1.8*y)))
	}
	must(net.AddTransaction("i_yo", network.WithRate(0.2), network.WithLabel(`\beta_{yo}`), network.WithPosition(0.5, 0)))
	must(net.AddTransaction("i_oy", network.WithRate(0.2), network.WithLabel(`\beta_{oy}`), network.WithPosition(1.5, 0)))

	for _, suffix := range []string{"y", "o"} {
		must(net.AddEdges(sirdsArcs(suffix, func(tx string) string {
			return tx[:1] + "_" + suffix + suffix
		})...))
	}
	must(net.AddEdges(
		[2]string{"So", "i_yo"},
		[2]string{"Iy", "i_yo"},
		[2]string{"i_yo", "Iy"},
		[2]string{"i_yo", "Io"},
		[2]string{"Sy", "i_oy"},
		[2]string{"Io", "i_oy"},
		[2]string{"i_oy", "Iy"},
		[2]string{"i_oy", "Io"},
	))

	place(net, map[string]network.Position{
		"Sy": {X: 0, Y: -1}, "Iy": {X: 2, Y: -1}, "Ry": {X: 4, Y: -1.4}, "Dy": {X: 4, Y: -0.6},
		"So": {X: 0, Y: 1}, "Io": {X: 2, Y: 1}, "Ro": {X: 4, Y: 1.4}, "Do": {X: 4, Y: 0.6},
	})
	return net
}

// infection is the autocatalytic S + I -> 2I pattern.
func infection(s, i, tx string) [][2]string {
	return [][2]string{
		{s, tx},
		{i, tx},
		{tx, i},
		{tx, i},
	}
}

// sirdsArcs returns the SIRDS arc list with species suffixed and
// transactions renamed by txName.
func sirdsArcs(suffix string, txName func(string) string) [][2]string {
	s, i, r, d := "S"+suffix, "I"+suffix, "R"+suffix, "D"+suffix
	arcs := infection(s, i, txName("infect"))
	return append(arcs,
		[2]string{i, txName("recover")},
		[2]string{txName("recover"), r},
		[2]string{i, txName("death")},
		[2]string{txName("death"), d},
		[2]string{r, txName("waning")},
		[2]string{txName("waning"), s},
	)
}

// place records layout positions for species nodes. Layout is only used by
// graph rendering.
func place(net *network.Network, pos map[string]network.Position) {
	for id, p := range pos {
		must(net.SetPosition(id, p.X, p.Y))
	}
}

// must panics on construction errors; the built-in models are static and
// covered by tests.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
