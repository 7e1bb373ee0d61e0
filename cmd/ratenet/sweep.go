package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/catalog"
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/sweep"
)

func runSweep(cmd *cobra.Command, args []string) error {
	if len(gridFlags) == 0 {
		return fmt.Errorf("at least one --grid axis is required")
	}
	axes := make([]sweep.Axis, 0, len(gridFlags))
	for _, g := range gridFlags {
		a, err := sweep.ParseAxis(g)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}
	variants, err := sweep.Grid(axes...)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	net, err := registry.GetModel(cfg.Model)
	if err != nil {
		return err
	}
	if _, err := registry.GetIntegrator(cfg.Method); err != nil {
		return err
	}
	base, err := cfg.Experiment(net)
	if err != nil {
		return err
	}

	newStepper := func() dynamo.Stepper {
		s, _ := registry.GetIntegrator(cfg.Method)
		return s
	}
	metric := metricName
	if metric == "" {
		metric = rankMetric(registry.DefaultMetrics(net))
	}
	if metric == "" {
		return fmt.Errorf("model %s has no peak metric, pass --metric", cfg.Model)
	}

	sw := sweep.New(net, base, newStepper,
		sweep.WithConcurrency(concurrency),
		sweep.WithLogger(logger),
		sweep.WithMetrics(registry.DefaultMetrics),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("sweep started", "model", cfg.Model, "variants", len(variants))
	start := time.Now()
	outcomes, err := sw.Run(ctx, variants)
	if err != nil {
		return err
	}

	fmt.Println(styles.Header.Render(fmt.Sprintf("%s sweep: %d variants in %v", cfg.Model, len(outcomes), time.Since(start))))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VARIANT\t%s\tSTEPS\tREJECTED\n", metric)
	for _, o := range outcomes {
		v, ok := o.Result.Metrics[metric]
		val := "-"
		if ok {
			val = fmt.Sprintf("%.6g", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", o.Variant.Name, val, o.Result.StepsTaken, o.Result.Rejected)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := sweep.Best(outcomes, metric)
	if !ok {
		return fmt.Errorf("no variant reported metric %q", metric)
	}
	fmt.Printf("\n%s %s (%s = %.6g)\n", styles.Label.Render("lowest:"),
		styles.Value.Render(best.Variant.Name), metric, best.Result.Metrics[metric])
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := strings.ToLower(args[0])
	registry := experiment.NewRegistry()
	net, err := registry.GetModel(model)
	if err != nil {
		return err
	}

	type entry struct {
		method string
		dt     float64
	}
	entries := []entry{{"rk45", 0}, {"rk4", 0.1}, {"euler", 0.01}}

	var reference dynamo.State
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tDT\tSTEPS\tEVALS\tTIME\tMAX |Δ| vs rk45")
	for _, e := range entries {
		stepper, err := registry.GetIntegrator(e.method)
		if err != nil {
			return err
		}
		cfg := experiment.Config{
			Model:   model,
			Method:  e.method,
			T1:      t1,
			Dt:      e.dt,
			Options: dynamo.DefaultOptions(),
		}
		cfg.InitState, err = catalog.InitialState(model)
		if err != nil {
			return err
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(net, stepper, nil); err != nil {
			return err
		}
		start := time.Now()
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s: %w", e.method, err)
		}
		elapsed := time.Since(start)

		final := result.Final()
		diff := "-"
		if reference == nil {
			reference = final
		} else {
			diff = fmt.Sprintf("%.3g", maxAbsDiff(reference, final))
		}
		dtText := "adaptive"
		if e.dt > 0 {
			dtText = fmt.Sprintf("%g", e.dt)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%s\n", e.method, dtText,
			result.StepsTaken, result.Evaluations, elapsed.Round(time.Microsecond), diff)
		logger.Debug("bench method done", "method", e.method, "steps", result.StepsTaken)
	}
	return w.Flush()
}

// rankMetric picks the first peak_* metric a model reports.
func rankMetric(ms []dynamo.Metric) string {
	for _, m := range ms {
		if name := m.Name(); strings.HasPrefix(name, "peak_") {
			return name
		}
	}
	return ""
}

func maxAbsDiff(a, b dynamo.State) float64 {
	m := 0.0
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m
}
