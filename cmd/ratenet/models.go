package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/catalog"
	"github.com/san-kum/ratenet/internal/config"
	"github.com/san-kum/ratenet/internal/export"
	"github.com/san-kum/ratenet/internal/network"
	"github.com/san-kum/ratenet/internal/ratelaw"
)

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSPECIES\tTRANSACTIONS\tPRESETS")
	for _, name := range catalog.Names() {
		net, err := catalog.Build(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			name,
			strings.Join(net.Species(), " "),
			strings.Join(net.Transactions(), " "),
			strings.Join(config.ListPresets(name), ", "),
		)
	}
	return w.Flush()
}

// loadNetwork builds a catalog model with optional rate overrides applied.
func loadNetwork(name string, rateFlags []string) (*network.Network, error) {
	net, err := catalog.Build(strings.ToLower(name))
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(catalog.Names(), ", "))
	}
	rates, err := parseAssignments(rateFlags)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return net, nil
	}
	return net.WithRates(rates)
}

func showEquations(cmd *cobra.Command, args []string) error {
	net, err := loadNetwork(args[0], rateFlags)
	if err != nil {
		return err
	}

	mode := ratelaw.ModeSymbolic
	if numeric {
		mode = ratelaw.ModeNumeric
	}

	if texFile != "" {
		if err := export.WriteDocument(texFile, net, mode); err != nil {
			return err
		}
		logger.Info("wrote document", "model", net.Name(), "path", texFile, "mode", mode)
		fmt.Printf("wrote %s\n", texFile)
		return nil
	}

	eqs, err := ratelaw.Equations(net, mode)
	if err != nil {
		return err
	}
	fmt.Println(styles.Header.Render(fmt.Sprintf("%s rate laws (%s)", net.Name(), mode)))
	for _, eq := range eqs {
		fmt.Println(styles.Equation.Render(eq))
	}
	return nil
}

func showGraph(cmd *cobra.Command, args []string) error {
	net, err := loadNetwork(args[0], nil)
	if err != nil {
		return err
	}
	if outFile != "" {
		return export.WriteDOT(outFile, net)
	}
	fmt.Print(export.DOT(net))
	return nil
}
