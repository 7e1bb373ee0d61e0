package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/export"
	"github.com/san-kum/ratenet/internal/storage"
	"github.com/san-kum/ratenet/internal/viz"
)

func metricsTable(m map[string]float64) string {
	return viz.MetricsTable(m, styles)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(series.States) < 2 {
		return fmt.Errorf("run %s: not enough samples to plot", runID)
	}

	fmt.Printf("%s %s\n", styles.Label.Render("run:"), meta.ID)
	fmt.Printf("%s %s (%s)\n", styles.Label.Render("model:"), meta.Model, meta.Method)
	fmt.Printf("%s %d\n\n", styles.Label.Render("samples:"), len(series.States))

	opts := viz.DefaultPlotOptions()
	switch {
	case phase != "":
		xs, ys, err := phaseAxes(series, phase)
		if err != nil {
			return err
		}
		fmt.Print(styles.Box("phase "+phase, strings.TrimSuffix(viz.PhasePortrait(xs, ys, 60, 15), "\n")))
		fmt.Println()
	case proportions:
		fmt.Println(viz.Proportions(series.Species, series.Times, series.States, opts))
	case overlay:
		opts.Height = 15
		fmt.Println(viz.Overlay(series.Species, series.Times, series.States, opts))
	default:
		fmt.Print(viz.PlotSeries(series.Species, series.Times, series.States, opts))
	}
	return nil
}

func phaseAxes(series *storage.Series, pair string) ([]float64, []float64, error) {
	xName, yName, ok := strings.Cut(pair, ",")
	if !ok {
		return nil, nil, fmt.Errorf("--phase wants x,y species, got %q", pair)
	}
	xi := slices.Index(series.Species, strings.TrimSpace(xName))
	yi := slices.Index(series.Species, strings.TrimSpace(yName))
	if xi < 0 || yi < 0 {
		return nil, nil, fmt.Errorf("--phase %q: species must be among %v", pair, series.Species)
	}
	r := series.Result(nil)
	return r.Component(xi), r.Component(yi), nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return st.ExportJSON(out, runID)
	case "svg":
		series, err := st.LoadStates(runID)
		if err != nil {
			return err
		}
		svg := export.SeriesSVG(series.Species, series.Times, series.States, 800, 400)
		if svg == "" {
			return fmt.Errorf("run %s: not enough samples to draw", runID)
		}
		_, err = fmt.Fprintln(out, svg)
		return err
	default:
		return fmt.Errorf("unknown format %q (json, svg)", format)
	}
}
