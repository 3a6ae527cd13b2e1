package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/burst/pkg/sunburst"
)

// cellAspect is how many column widths one terminal row is tall.
const cellAspect = 2.0

// chartGeometry maps terminal cells to chart coordinates. The chart is a
// square canvas of side 2*maxRadius centered in a cols x rows cell area.
type chartGeometry struct {
	cols, rows int
	scale      float64 // chart units per column width
}

func newChartGeometry(cols, rows int, maxRadius float64) chartGeometry {
	g := chartGeometry{cols: max(cols, 0), rows: max(rows, 0)}
	span := math.Min(float64(g.cols), cellAspect*float64(g.rows))
	if span > 0 && maxRadius > 0 {
		g.scale = 2 * maxRadius / span
	}
	return g
}

func (g chartGeometry) empty() bool {
	return g.cols == 0 || g.rows == 0 || g.scale == 0
}

// toChart returns the center of cell (col, row) relative to the chart
// center, with y growing downward.
func (g chartGeometry) toChart(col, row int) (x, y float64) {
	x = (float64(col) + 0.5 - float64(g.cols)/2) * g.scale
	y = (float64(row) + 0.5 - float64(g.rows)/2) * cellAspect * g.scale
	return x, y
}

// contains reports whether the cell lies inside the chart area.
func (g chartGeometry) contains(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// cell is one rasterised terminal cell. A zero ch is a solid block in fill;
// otherwise ch is text drawn over fill.
type cell struct {
	fill   colorful.Color
	filled bool
	ch     rune
}

// rasterize samples every cell center against the arcs. Later arcs win,
// matching the back-to-front order Paint returns.
func rasterize(g chartGeometry, arcs []sunburst.Arc) [][]cell {
	grid := make([][]cell, g.rows)
	fills := make([]colorful.Color, len(arcs))
	for i, a := range arcs {
		fills[i] = a.FillColor()
	}
	for row := range grid {
		grid[row] = make([]cell, g.cols)
		for col := range grid[row] {
			x, y := g.toChart(col, row)
			radius, angle := math.Hypot(x, y), math.Atan2(y, x)
			for i := len(arcs) - 1; i >= 0; i-- {
				if arcs[i].Contains(radius, angle) {
					grid[row][col] = cell{fill: fills[i], filled: true}
					break
				}
			}
		}
	}
	return grid
}

// overlayLabel writes label across the middle row, keeping the fill under it
// as the text background. Labels wider than the chart are dropped.
func overlayLabel(grid [][]cell, label string) {
	if len(grid) == 0 || label == "" {
		return
	}
	row := grid[len(grid)/2]
	w := runewidth.StringWidth(label)
	if w > len(row) {
		return
	}
	col := (len(row) - w) / 2
	for _, r := range label {
		rw := runewidth.RuneWidth(r)
		if rw != 1 {
			continue
		}
		row[col].ch = r
		col++
	}
}

// renderGrid turns cells into styled lines, one style run per color change.
func renderGrid(grid [][]cell, t Theme) string {
	lines := make([]string, len(grid))

	for i, row := range grid {
		var sb strings.Builder
		var run strings.Builder
		var runCell cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			switch {
			case !runCell.filled && runCell.ch == 0:
				sb.WriteString(run.String())
			case runCell.ch != 0:
				style := t.CenterLabel
				bg := lipgloss.TerminalColor(lipgloss.NoColor{})
				if runCell.filled {
					bg = ThemeBg(runCell.fill.Hex())
				}
				if _, plain := bg.(lipgloss.NoColor); plain {
					// No reliable fill behind the text: use the terminal background.
					style = style.Foreground(ThemeFg("#F8F8F2"))
				} else {
					style = style.Background(bg)
				}
				sb.WriteString(style.Render(run.String()))
			default:
				sb.WriteString(t.Fill(runCell.fill).Render(run.String()))
			}
			run.Reset()
		}

		for j, c := range row {
			if j > 0 && !sameRun(c, runCell) {
				flush()
			}
			if run.Len() == 0 {
				runCell = c
			}
			switch {
			case c.ch != 0:
				run.WriteRune(c.ch)
			case c.filled:
				run.WriteString("█")
			default:
				run.WriteByte(' ')
			}
		}
		flush()
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func sameRun(a, b cell) bool {
	if a.filled != b.filled || (a.ch != 0) != (b.ch != 0) {
		return false
	}
	return !a.filled || a.fill == b.fill
}

// renderChart draws the current frame of the controller into g.
func renderChart(c *sunburst.Controller, g chartGeometry, t Theme) string {
	if g.empty() {
		return ""
	}
	grid := rasterize(g, sunburst.Paint(c.PaintView()))
	if label, ok := c.CenterLabel(); ok {
		overlayLabel(grid, label)
	}
	return renderGrid(grid, t)
}
