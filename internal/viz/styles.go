package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles used for CLI output under one theme.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Subtle   lipgloss.Style
	Equation lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style

	sparkHigh, sparkMid, sparkLow lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted),
		Value: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
		Equation: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(2),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),

		sparkHigh: lipgloss.NewStyle().Foreground(t.Primary),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Accent),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Secondary),
	}
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a one-line bar chart of at most width cells.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	lo, hi := bounds(values)
	rng := hi - lo

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(sparkChars)-1))
		idx = max(0, min(len(sparkChars)-1, idx))

		c := string(sparkChars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(s.sparkMid.Render(c))
		default:
			result.WriteString(s.sparkLow.Render(c))
		}
	}
	return result.String()
}

// Box renders content in a rounded panel with a title line.
func (s Styles) Box(title, content string) string {
	return s.Title.Render(title) + "\n" + s.Panel.Render(content)
}

func (s Styles) Separator(width int) string {
	mid := width / 2
	if mid < 3 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.Subtle.Render(left + " ◆ " + right)
}
