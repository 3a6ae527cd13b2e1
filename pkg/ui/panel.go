package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/sunburst"
)

const (
	panelHeaderLines = 2  // breadcrumb and divider
	sizeColumnWidth  = 10 // "1023.9 KiB"
	breadcrumbLabel  = "Directory: "
)

// panelRow is one line of the listing. The first row is always the "../"
// row; at the top level its node is nil and it does nothing.
type panelRow struct {
	node   *sunburst.Node
	name   string
	parent bool
}

// panelRows lists the "../" row followed by current's children in chart
// order. Directory names end in "/".
func panelRows(current *sunburst.Node) []panelRow {
	if current == nil {
		return nil
	}
	rows := make([]panelRow, 0, len(current.Children)+1)
	up := panelRow{node: current.Parent, parent: true}
	if up.node != nil {
		up.name = "../"
	}
	rows = append(rows, up)
	for _, c := range current.Children {
		name := c.Name
		if c.IsDir() {
			name += "/"
		}
		rows = append(rows, panelRow{node: c, name: name})
	}
	return rows
}

// hoveredRow returns the index of the row for the nearest ancestor of
// hovered that has a row, or -1.
func hoveredRow(rows []panelRow, hovered *sunburst.Node) int {
	for n := hovered; n != nil; n = n.Parent {
		for i, r := range rows {
			if r.node == n {
				return i
			}
		}
	}
	return -1
}

// crumb is one clickable breadcrumb segment. x is its offset within the
// rendered breadcrumb line.
type crumb struct {
	node *sunburst.Node
	text string
	x    int
}

// breadcrumbs lists the path from the root down to current. Segments that
// don't fit in width are elided from the left.
func breadcrumbs(current *sunburst.Node, width int) []crumb {
	var segs []crumb
	for n := current; n != nil; n = n.Parent {
		text := n.Path + "/"
		if n.Parent != nil {
			text = n.Name + "/"
		}
		segs = append([]crumb{{node: n, text: text}}, segs...)
	}

	avail := width - runewidth.StringWidth(breadcrumbLabel)
	total := func() int {
		w := 0
		for _, s := range segs {
			w += runewidth.StringWidth(s.text)
		}
		return w
	}
	elided := false
	for len(segs) > 1 && total()+boolWidth(elided) > avail {
		segs = segs[1:]
		elided = true
	}

	x := runewidth.StringWidth(breadcrumbLabel) + boolWidth(elided)
	for i := range segs {
		segs[i].x = x
		x += runewidth.StringWidth(segs[i].text)
	}
	if elided {
		segs = append([]crumb{{text: "…"}}, segs...)
		segs[0].x = runewidth.StringWidth(breadcrumbLabel)
	}
	return segs
}

func boolWidth(b bool) int {
	if b {
		return 1
	}
	return 0
}

// crumbAt returns the breadcrumb node under column x, or nil.
func crumbAt(crumbs []crumb, x int) *sunburst.Node {
	for _, c := range crumbs {
		if c.node != nil && x >= c.x && x < c.x+runewidth.StringWidth(c.text) {
			return c.node
		}
	}
	return nil
}

// panel renders the listing beside the chart and maps pointer rows back to
// panel rows.
type panel struct {
	width  int
	height int
	offset int // first visible row
}

// visibleRows is how many listing rows fit under the header.
func (p *panel) visibleRows() int {
	return max(p.height-panelHeaderLines, 0)
}

// scrollTo adjusts the offset so row i is visible.
func (p *panel) scrollTo(i, count int) {
	n := p.visibleRows()
	if n == 0 {
		p.offset = 0
		return
	}
	if i >= 0 {
		if i < p.offset {
			p.offset = i
		} else if i >= p.offset+n {
			p.offset = i - n + 1
		}
	}
	p.offset = max(min(p.offset, count-n), 0)
}

// rowAt maps a panel line to a row index, or -1 for the header and blank
// lines.
func (p *panel) rowAt(line, count int) int {
	i := line - panelHeaderLines + p.offset
	if line < panelHeaderLines || i >= count || i < 0 {
		return -1
	}
	return i
}

func (p *panel) render(current *sunburst.Node, hovered *sunburst.Node, cursor int, t Theme) string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	rows := panelRows(current)
	hover := hoveredRow(rows, hovered)
	if cursor < 0 {
		cursor = hover
	}
	p.scrollTo(cursor, len(rows))

	lines := make([]string, 0, p.height)
	lines = append(lines, p.renderBreadcrumb(current, t))
	lines = append(lines, RenderDivider(p.width))

	var maxBytes int64 = 1
	for _, c := range current.Children {
		maxBytes = max(maxBytes, c.Bytes)
	}

	end := min(p.offset+p.visibleRows(), len(rows))
	for i := p.offset; i < end; i++ {
		lines = append(lines, p.renderRow(rows[i], maxBytes, i == hover, t))
	}
	for len(lines) < p.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (p *panel) renderBreadcrumb(current *sunburst.Node, t Theme) string {
	var sb strings.Builder
	sb.WriteString(t.MutedText.Render(breadcrumbLabel))
	for _, c := range breadcrumbs(current, p.width) {
		switch {
		case c.node == nil:
			sb.WriteString(t.MutedText.Render(c.text))
		case c.node == current:
			sb.WriteString(t.PrimaryBold.Render(c.text))
		default:
			sb.WriteString(t.Link.Render(c.text))
		}
	}
	return sb.String()
}

func (p *panel) renderRow(r panelRow, maxBytes int64, hovered bool, t Theme) string {
	marker := " "
	if hovered {
		marker = t.PrimaryBold.Render("▌")
	}
	inner := p.width - 1
	if r.parent {
		return marker + padRight(r.name, inner)
	}

	barWidth := max(inner/4, 0)
	nameWidth := max(inner-barWidth-sizeColumnWidth-2, 1)

	name := padRight(truncate(r.name, nameWidth), nameWidth)
	if hovered {
		name = t.Selected.Render(name)
	} else if r.node.IsDir() {
		name = t.Base.Bold(true).Render(name)
	}

	c := sunburst.Arc{Node: r.node}.FillColor()
	bar := RenderSizeBar(float64(r.node.Bytes)/float64(maxBytes), barWidth, c, t)
	size := t.MutedText.Render(fmt.Sprintf("%*s", sizeColumnWidth, metafile.FormatBytes(r.node.Bytes)))
	return marker + name + " " + bar + " " + size
}
