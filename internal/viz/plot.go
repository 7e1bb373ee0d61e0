package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ratenet/internal/dynamo"
)

type PlotOptions struct {
	Width  int
	Height int
	// Samples is the size of the uniform time grid plotted; zero uses Width.
	Samples int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 10}
}

func (o PlotOptions) samples() int {
	if o.Samples > 0 {
		return o.Samples
	}
	if o.Width > 0 {
		return o.Width
	}
	return 80
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green, asciigraph.Red, asciigraph.Blue, asciigraph.Yellow,
	asciigraph.Magenta, asciigraph.Cyan, asciigraph.White, asciigraph.Gray,
}

// Resample linearly interpolates values, sampled at increasing times, onto
// n evenly spaced points spanning the same interval. Adaptive solutions
// cluster samples where the dynamics are fast; plotting them by index
// would distort the time axis.
func Resample(times, values []float64, n int) []float64 {
	if len(times) == 0 || len(values) != len(times) || n <= 0 {
		return nil
	}
	if len(times) == 1 || n == 1 {
		return []float64{values[0]}
	}

	t0, t1 := times[0], times[len(times)-1]
	out := make([]float64, n)
	k := 0
	for i := range out {
		t := t0 + (t1-t0)*float64(i)/float64(n-1)
		if i == n-1 {
			t = t1
		}
		for k < len(times)-2 && times[k+1] < t {
			k++
		}
		span := times[k+1] - times[k]
		if span <= 0 {
			out[i] = values[k+1]
			continue
		}
		f := (t - times[k]) / span
		f = max(0, min(1, f))
		out[i] = values[k] + f*(values[k+1]-values[k])
	}
	return out
}

func column(states []dynamo.State, j int) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		if j < len(x) {
			out[i] = x[j]
		}
	}
	return out
}

// PlotSeries renders one asciigraph chart per species, on a uniform time
// grid.
func PlotSeries(species []string, times []float64, states []dynamo.State, opts PlotOptions) string {
	var sb strings.Builder
	n := opts.samples()
	for j, name := range species {
		data := Resample(times, column(states, j), n)
		if len(data) == 0 {
			continue
		}
		caption := fmt.Sprintf("%s over t in [%g, %g]", name, times[0], times[len(times)-1])
		sb.WriteString(asciigraph.Plot(data,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(caption),
		))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Overlay draws every species on one chart, one colour each.
func Overlay(species []string, times []float64, states []dynamo.State, opts PlotOptions) string {
	n := opts.samples()
	series := make([][]float64, 0, len(species))
	colors := make([]asciigraph.AnsiColor, 0, len(species))
	for j := range species {
		data := Resample(times, column(states, j), n)
		if len(data) == 0 {
			return ""
		}
		series = append(series, data)
		colors = append(colors, seriesColors[j%len(seriesColors)])
	}
	if len(series) == 0 {
		return ""
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(strings.Join(species, " ")),
	)
}

// Backsums returns the cumulative sums of the species trajectories taken
// from the last species backwards: sums[0] is the last species alone and
// sums[n-1] is the total. Drawn together they form the stacked
// proportions chart, where the band between sums[k-1] and sums[k] is
// species n-1-k.
func Backsums(states []dynamo.State) [][]float64 {
	if len(states) == 0 {
		return nil
	}
	n := len(states[0])
	sums := make([][]float64, n)
	for k := range sums {
		sums[k] = make([]float64, len(states))
	}
	for i, x := range states {
		acc := 0.0
		for k := 0; k < n; k++ {
			acc += x[n-1-k]
			sums[k][i] = acc
		}
	}
	return sums
}

// Proportions charts the backsums of a run, the terminal form of a stacked
// area plot of population proportions.
func Proportions(species []string, times []float64, states []dynamo.State, opts PlotOptions) string {
	sums := Backsums(states)
	if len(sums) == 0 {
		return ""
	}
	n := opts.samples()
	series := make([][]float64, len(sums))
	colors := make([]asciigraph.AnsiColor, len(sums))
	for k, s := range sums {
		series[k] = Resample(times, s, n)
		colors[k] = seriesColors[k%len(seriesColors)]
	}

	bands := make([]string, len(species))
	for k := range species {
		bands[k] = species[len(species)-1-k]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption("stacked from bottom: "+strings.Join(bands, ", ")),
	)
}

// MetricsTable formats metric values in name order.
func MetricsTable(m map[string]float64, s Styles) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(s.Label.Render(fmt.Sprintf("  %-22s", name)))
		sb.WriteString(s.Value.Render(fmt.Sprintf("%.6g", m[name])))
		sb.WriteByte('\n')
	}
	return sb.String()
}
