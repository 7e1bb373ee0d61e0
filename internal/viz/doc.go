// Package viz renders simulation output for the terminal.
//
//   - [PlotSeries], [Overlay]: asciigraph charts of species trajectories,
//     resampled onto a uniform time grid
//   - [Proportions]: stacked population proportions built from [Backsums]
//   - [PhasePortrait]: braille-dot trajectory of one species against another
//   - [Styles]: lipgloss styles derived from a [Theme]
package viz
