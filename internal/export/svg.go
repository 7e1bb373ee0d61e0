package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/ratenet/internal/dynamo"
)

// Palette cycles through line colours for successive species.
var Palette = []string{"#00ff00", "#ff6b6b", "#4dabf7", "#ffd43b", "#cc5de8", "#ff922b", "#20c997", "#adb5bd"}

// SeriesSVG draws one polyline per species over time on a shared y axis,
// with a legend in the top-left corner.
func SeriesSVG(species []string, times []float64, states []dynamo.State, width, height int) string {
	if len(times) < 2 || len(states) != len(times) || len(species) == 0 || len(states[0]) == 0 {
		return ""
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := states[0][0], states[0][0]
	for _, x := range states {
		for _, v := range x {
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for j, name := range species {
		color := Palette[j%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, t := range times {
			if j >= len(states[i]) {
				break
			}
			x := (t - minX) / rangeX * float64(width)
			y := float64(height) - (states[i][j]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(j+1), color, html.EscapeString(name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
