package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/ratenet/internal/viz"
)

var (
	dataDir  string
	theme    string
	logLevel string

	// run / sweep
	configFile string
	preset     string
	method     string
	t0         float64
	t1         float64
	dt         float64
	rtol       float64
	atol       float64
	maxSteps   int
	rateFlags  []string
	initFlags  []string

	// equations / graph / export
	numeric bool
	texFile string
	outFile string
	format  string

	// plot
	overlay     bool
	proportions bool
	phase       string

	// sweep
	gridFlags   []string
	concurrency int
	metricName  string

	logger *slog.Logger
	styles viz.Styles
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ratenet",
		Short:         "reaction network rate laws and simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			styles = viz.NewStyles(viz.GetTheme(theme))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ratenet", "data directory")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	equationsCmd := &cobra.Command{
		Use:   "equations [model]",
		Short: "print the mass-action rate laws of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  showEquations,
	}
	equationsCmd.Flags().BoolVar(&numeric, "numeric", false, "substitute numeric rate constants")
	equationsCmd.Flags().StringVar(&texFile, "tex", "", "write a LaTeX document to this file")
	equationsCmd.Flags().StringArrayVar(&rateFlags, "rate", nil, "override a rate constant (id=value)")

	graphCmd := &cobra.Command{
		Use:   "graph [model]",
		Short: "print the network as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE:  showGraph,
	}
	graphCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringArrayVar(&initFlags, "init", nil, "initial value of a species (id=value)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&overlay, "overlay", false, "draw all species on one chart")
	plotCmd.Flags().BoolVar(&proportions, "proportions", false, "draw stacked population proportions")
	plotCmd.Flags().StringVar(&phase, "phase", "", "phase portrait of two species (x,y)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "output format (json, svg)")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a model over a grid of rate constants",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSolverFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&gridFlags, "grid", nil, "rate values to sweep (id=v1,v2,...)")
	sweepCmd.Flags().IntVar(&concurrency, "concurrency", 0, "variants integrated at once (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "", "metric used to rank variants (default: first peak_* of the model)")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "compare integration methods on a model",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().Float64Var(&t1, "t1", 365, "end time")

	rootCmd.AddCommand(modelsCmd, equationsCmd, graphCmd, runCmd, listCmd, plotCmd, exportCmd, sweepCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", "rk45", "integration method (rk45, rk4, euler)")
	cmd.Flags().Float64Var(&t0, "t0", 0, "start time")
	cmd.Flags().Float64Var(&t1, "t1", 365, "end time")
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "step for fixed-step methods")
	cmd.Flags().Float64Var(&rtol, "rtol", 1e-9, "relative tolerance (rk45)")
	cmd.Flags().Float64Var(&atol, "atol", 1e-12, "absolute tolerance (rk45)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 1_000_000, "step attempt limit (rk45)")
	cmd.Flags().StringArrayVar(&rateFlags, "rate", nil, "override a rate constant (id=value)")
}

// parseAssignments reads repeated id=value flags.
func parseAssignments(flags []string) (map[string]float64, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(flags))
	for _, f := range flags {
		id, val, ok := strings.Cut(f, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("expected id=value, got %q", f)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		out[id] = v
	}
	return out, nil
}
