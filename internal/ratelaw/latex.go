package ratelaw

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/ratenet/internal/network"
)

// Mode selects what stands in for each transaction's rate constant when a
// rate law is typeset.
type Mode int

const (
	// ModeSymbolic uses the transaction's label, e.g. `\beta`.
	ModeSymbolic Mode = iota
	// ModeNumeric uses the transaction's numeric rate constant.
	ModeNumeric
)

func (m Mode) String() string {
	if m == ModeNumeric {
		return "numeric"
	}
	return "symbolic"
}

// Derivative returns the left-hand side `\frac{dX}{dt}`.
func Derivative(species string) string {
	return `\frac{d` + species + `}{dt}`
}

// RHS typesets the right-hand side of a species' rate law. It is empty when
// no transaction changes the species.
func RHS(net *network.Network, species string, mode Mode) (string, error) {
	if net.SpeciesIndex(species) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
	}

	var sb strings.Builder
	for i, term := range Terms(net, species) {
		rate, err := rateText(net, term.Transaction, mode)
		if err != nil {
			return "", err
		}

		switch {
		case i == 0 && term.Coefficient < 0:
			sb.WriteString("-")
		case i > 0 && term.Coefficient < 0:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}

		mag := term.Coefficient
		if mag < 0 {
			mag = -mag
		}
		if mag != 1 {
			sb.WriteString(strconv.Itoa(mag))
			if mode == ModeNumeric {
				sb.WriteString(` \cdot `)
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(rate)

		for _, r := range term.Reactants {
			sb.WriteString(" ")
			sb.WriteString(r.Species)
			if r.Multiplicity > 1 {
				sb.WriteString("^{")
				sb.WriteString(strconv.Itoa(r.Multiplicity))
				sb.WriteString("}")
			}
		}
	}
	return sb.String(), nil
}

// Equation typesets `\frac{dX}{dt} = ...` for one species.
func Equation(net *network.Network, species string, mode Mode) (string, error) {
	return equation(net, species, mode, " =")
}

func equation(net *network.Network, species string, mode Mode, eq string) (string, error) {
	rhs, err := RHS(net, species, mode)
	if err != nil {
		return "", err
	}
	if rhs == "" {
		return Derivative(species) + eq, nil
	}
	return Derivative(species) + eq + " " + rhs, nil
}

// Equations typesets one equation per species, in species order.
func Equations(net *network.Network, mode Mode) ([]string, error) {
	species := net.Species()
	out := make([]string, 0, len(species))
	for _, s := range species {
		eq, err := Equation(net, s, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, nil
}

// Align typesets the whole system as an amsmath align* block.
func Align(net *network.Network, mode Mode) (string, error) {
	species := net.Species()
	lines := make([]string, 0, len(species))
	for _, s := range species {
		eq, err := equation(net, s, mode, " &=")
		if err != nil {
			return "", err
		}
		lines = append(lines, eq)
	}
	return "\\begin{align*}\n" + strings.Join(lines, " \\\\\n") + "\n\\end{align*}", nil
}

// Document wraps Align in a standalone LaTeX article.
func Document(net *network.Network, mode Mode) (string, error) {
	body, err := Align(net, mode)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("\\documentclass{article}\n")
	sb.WriteString("\\usepackage{amsmath}\n\n")
	sb.WriteString("\\begin{document}\n\n")
	if name := net.Name(); name != "" {
		sb.WriteString("\\section*{" + name + "}\n\n")
	}
	sb.WriteString(body)
	sb.WriteString("\n\n\\end{document}\n")
	return sb.String(), nil
}

func rateText(net *network.Network, tx string, mode Mode) (string, error) {
	if mode == ModeNumeric {
		r, err := rateConstant(net, tx)
		if err != nil {
			return "", err
		}
		if r < 0 {
			return "(" + FormatNumber(r) + ")", nil
		}
		return FormatNumber(r), nil
	}
	return symbolicLabel(net, tx)
}

// FormatNumber prints v in its shortest exact form, with exponents typeset
// as powers of ten.
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	if mant == "1" {
		return fmt.Sprintf("10^{%d}", e)
	}
	return fmt.Sprintf(`%s \times 10^{%d}`, mant, e)
}
