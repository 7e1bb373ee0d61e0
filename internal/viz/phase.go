package viz

import (
	"strings"
)

// Braille cells hold 2x4 dots; bit layout per dot, offset from 0x2800.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille dot canvas of Width x Height cells, i.e.
// (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
	return c
}

// Set lights the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PhasePortrait traces the trajectory (xs[i], ys[i]) on a w x h cell
// canvas, e.g. I against S. Each axis is scaled to its own range.
func PhasePortrait(xs, ys []float64, w, h int) string {
	n := min(len(xs), len(ys))
	if n == 0 || w <= 0 || h <= 0 {
		return ""
	}
	c := NewCanvas(w, h)

	minX, maxX := bounds(xs[:n])
	minY, maxY := bounds(ys[:n])
	dotsX, dotsY := float64(2*w-1), float64(4*h-1)
	project := func(i int) (int, int) {
		px := int((xs[i] - minX) / (maxX - minX) * dotsX)
		py := int(dotsY - (ys[i]-minY)/(maxY-minY)*dotsY)
		return px, py
	}

	px, py := project(0)
	c.Set(px, py)
	for i := 1; i < n; i++ {
		qx, qy := project(i)
		c.DrawLine(px, py, qx, qy)
		px, py = qx, qy
	}
	return c.String()
}

// bounds returns min and max of v, widened so the range is never zero.
func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}
