package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/config"
	"github.com/san-kum/ratenet/internal/dynamo"
	"github.com/san-kum/ratenet/internal/experiment"
	"github.com/san-kum/ratenet/internal/metrics"
	"github.com/san-kum/ratenet/internal/storage"
)

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = strings.ToLower(args[0])
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Model = strings.ToLower(args[0])
		}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("t1") {
		cfg.T1 = t1
	}
	if flags.Changed("dt") || (cfg.Dt == 0 && cfg.Method != "rk45") {
		cfg.Dt = dt
	}
	if flags.Changed("rtol") {
		cfg.RelTol = rtol
	}
	if flags.Changed("atol") {
		cfg.AbsTol = atol
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}

	rates, err := parseAssignments(rateFlags)
	if err != nil {
		return nil, err
	}
	for id, r := range rates {
		if cfg.Rates == nil {
			cfg.Rates = make(map[string]float64)
		}
		cfg.Rates[id] = r
	}
	if cmd.Flags().Lookup("init") != nil {
		inits, err := parseAssignments(initFlags)
		if err != nil {
			return nil, err
		}
		for id, v := range inits {
			if cfg.Initial == nil {
				cfg.Initial = make(map[string]float64)
			}
			cfg.Initial[id] = v
		}
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		return fmt.Errorf("model argument or --config required")
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	net, err := registry.GetModel(cfg.Model)
	if err != nil {
		return err
	}
	stepper, err := registry.GetIntegrator(cfg.Method)
	if err != nil {
		return err
	}

	expCfg, err := cfg.Experiment(net)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	stats, err := metrics.NewSolverStats(reg)
	if err != nil {
		return err
	}
	expCfg.Options.Observer = stats

	exp := experiment.New(expCfg)
	if err := exp.Setup(net, stepper, registry.DefaultMetrics(net)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("run started", "model", cfg.Model, "method", cfg.Method, "t0", cfg.T0, "t1", cfg.T1)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Model:   cfg.Model,
		Method:  cfg.Method,
		T0:      cfg.T0,
		T1:      cfg.T1,
		Species: exp.System().Species(),
		Rates:   effectiveRates(exp),
	}
	if cfg.Method == "rk45" {
		meta.RelTol, meta.AbsTol = expCfg.Options.RelTol, expCfg.Options.AbsTol
	} else {
		meta.Dt = cfg.Dt
	}

	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	logger.Info("run stored", "id", runID, "elapsed", elapsed)

	printSummary(runID, meta.Species, result, elapsed)
	if cfg.Method == "rk45" {
		printSolverStats(reg)
	}
	return nil
}

func effectiveRates(exp *experiment.Experiment) map[string]float64 {
	net := exp.Network()
	rates := make(map[string]float64)
	for _, id := range net.Transactions() {
		node, _ := net.Node(id)
		if r, ok := node.Rate(); ok {
			rates[id] = r
		}
	}
	return rates
}

func printSummary(runID string, species []string, result *dynamo.Result, elapsed time.Duration) {
	fmt.Println(styles.Header.Render("run " + runID))
	fmt.Printf("%s %v\n", styles.Label.Render("completed in"), elapsed)
	fmt.Printf("%s %d accepted, %d rejected, %d evaluations\n",
		styles.Label.Render("steps:"), result.StepsTaken, result.Rejected, result.Evaluations)

	fmt.Println()
	for j, s := range species {
		fmt.Printf("  %-4s %s %s\n", s,
			styles.Sparkline(result.Component(j), 40),
			styles.Value.Render(fmt.Sprintf("%.6g", result.Final()[j])))
	}

	fmt.Println("\nmetrics:")
	fmt.Print(metricsTable(result.Metrics))
}

func printSolverStats(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("gather solver metrics", "err", err)
		return
	}
	fmt.Println("\nsolver:")
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("  %s %g\n", styles.Label.Render(f.GetName()), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				mean := 0.0
				if h.GetSampleCount() > 0 {
					mean = h.GetSampleSum() / float64(h.GetSampleCount())
				}
				fmt.Printf("  %s mean %.4g over %d steps\n", styles.Label.Render(f.GetName()), mean, h.GetSampleCount())
			}
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSPAN\tMETHOD\tSTEPS\tREJECTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t[%g, %g]\t%s\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.T0, run.T1,
			run.Method,
			run.StepsTaken,
			run.Rejected,
		)
	}
	return w.Flush()
}
