package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
	"github.com/vanderheijden86/burst/pkg/sunburst"
)

// DefaultSnapshotSize is the chart side in pixels when SnapshotOptions.Size is zero.
const DefaultSnapshotSize = 800

// SnapshotOptions controls sunburst snapshot export.
type SnapshotOptions struct {
	Path    string              // Output path; format inferred from extension when Format empty
	Format  string              // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title   string              // Optional title rendered in the summary block
	Size    int                 // Chart side in pixels
	Tree    *sunburst.Tree      // Tree to render
	Focus   *sunburst.Node      // Node drawn at the center; nil means the tree root
	Hovered *sunburst.Node      // Optional node whose subtree is highlighted
	Radius  sunburst.RadiusFunc // Radius shape; rescaled to fit Size
}

// SaveSnapshot renders a static sunburst (SVG or PNG) with a short summary
// block above the chart.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Tree == nil || opts.Tree.Root == nil {
		return fmt.Errorf("no tree to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	bw := bufio.NewWriter(file)
	switch format {
	case "svg":
		err = RenderSVG(bw, opts)
	case "png":
		err = RenderPNG(bw, opts)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", opts.Path, err)
	}
	return file.Close()
}

// RenderSVG writes the snapshot as SVG to w.
func RenderSVG(w io.Writer, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.Export)()
	if opts.Tree == nil || opts.Tree.Root == nil {
		return fmt.Errorf("no tree to export")
	}
	renderSVGToWriter(w, buildLayout(opts))
	return nil
}

// RenderPNG writes the snapshot as PNG to w.
func RenderPNG(w io.Writer, opts SnapshotOptions) error {
	defer metrics.Timer(metrics.Export)()
	if opts.Tree == nil || opts.Tree.Root == nil {
		return fmt.Errorf("no tree to export")
	}
	return renderPNG(w, buildLayout(opts))
}

// --- layout computation ----------------------------------------------------

type entry struct {
	Name  string
	Size  string
	Color string
}

type layoutResult struct {
	Width   int
	Height  int
	Header  float64
	CX, CY  float64
	Arcs    []sunburst.Arc
	Center  string
	Summary summaryInfo
	Top     []entry
}

type summaryInfo struct {
	Title    string
	Root     string
	Total    string
	Files    int
	MaxDepth int
	Largest  string
}

const (
	headerHeight = 120.0
	padding      = 16.0
	topEntries   = 4
)

func buildLayout(opts SnapshotOptions) layoutResult {
	size := opts.Size
	if size <= 0 {
		size = DefaultSnapshotSize
	}
	focus := opts.Focus
	if focus == nil {
		focus = opts.Tree.Root
	}
	radius := opts.Radius
	if radius == (sunburst.RadiusFunc{}) {
		radius = sunburst.DefaultRadius()
	}

	// Scale the radius so every ring below the focus fits the canvas.
	depth, files := 0, 0
	var largest *sunburst.Node
	sunburst.Walk(focus, sunburst.FullCircle(), func(n *sunburst.Node, w sunburst.Wedge) bool {
		if int(w.Depth)+1 > depth {
			depth = int(w.Depth) + 1
		}
		if !n.IsDir() {
			files++
			if largest == nil || n.Bytes > largest.Bytes {
				largest = n
			}
		}
		return true
	})
	avail := float64(size)/2 - padding
	if natural := radius.At(float64(depth)); natural > 0 {
		radius.Scale *= avail / natural
	}

	arcs := sunburst.Paint(sunburst.PaintView{
		Root:      focus,
		Wedge:     sunburst.FullCircle(),
		Hovered:   opts.Hovered,
		Radius:    radius,
		MaxRadius: avail + 0.5,
	})

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Bundle Size Snapshot"
	}
	rootName := opts.Tree.RelPath(focus)
	if rootName == "" {
		rootName = focus.Path
	}
	if rootName == "" {
		rootName = "/"
	}
	largestText := "n/a"
	if largest != nil {
		largestText = fmt.Sprintf("%s (%s)", truncate(opts.Tree.RelPath(largest), 48), metafile.FormatBytes(largest.Bytes))
	}

	var top []entry
	for _, c := range focus.Children {
		if len(top) == topEntries {
			break
		}
		name := c.Name
		if c.IsDir() {
			name += "/"
		}
		top = append(top, entry{Name: truncate(name, 18), Size: metafile.FormatBytes(c.Bytes), Color: c.Color})
	}

	return layoutResult{
		Width:  size,
		Height: size + int(headerHeight),
		Header: headerHeight,
		CX:     float64(size) / 2,
		CY:     headerHeight + float64(size)/2,
		Arcs:   arcs,
		Center: metafile.FormatBytes(focus.Bytes),
		Summary: summaryInfo{
			Title:    title,
			Root:     truncate(rootName, 56),
			Total:    metafile.FormatBytes(focus.Bytes),
			Files:    files,
			MaxDepth: depth,
			Largest:  largestText,
		},
		Top: top,
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
)

func renderPNG(w io.Writer, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	drawSummaryBlock(dc, layout)
	drawTopEntries(dc, layout)

	dc.SetFillRuleEvenOdd()
	for _, a := range layout.Arcs {
		traceArc(dc, layout.CX, layout.CY, a)
		dc.SetColor(a.FillColor())
		dc.Fill()
	}
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	for _, a := range layout.Arcs {
		traceArc(dc, layout.CX, layout.CY, a)
		dc.Stroke()
	}

	if layout.Center != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(layout.Center, layout.CX, layout.CY, 0.5, 0.5)
	}

	return dc.EncodePNG(w)
}

func traceArc(dc *gg.Context, cx, cy float64, a sunburst.Arc) {
	if a.FullCircle {
		dc.DrawCircle(cx, cy, a.OuterRadius)
		if a.InnerRadius > 0 {
			dc.DrawCircle(cx, cy, a.InnerRadius)
		}
		return
	}
	end := a.StartAngle + a.SweepAngle
	dc.NewSubPath()
	dc.DrawArc(cx, cy, a.OuterRadius, a.StartAngle, end)
	dc.DrawArc(cx, cy, a.InnerRadius, end, a.StartAngle)
	dc.ClosePath()
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("root: %s  total: %s", layout.Summary.Root, layout.Summary.Total), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("files: %d  rings: %d", layout.Summary.Files, layout.Summary.MaxDepth), 32, 84, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("largest: %s", layout.Summary.Largest), 32, 104, 0, 0.5)
}

func drawTopEntries(dc *gg.Context, layout layoutResult) {
	if len(layout.Top) == 0 {
		return
	}
	boxW := 200.0
	boxH := 24.0 + 16*float64(len(layout.Top))
	x := float64(layout.Width) - boxW - 24
	y := 24.0
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y, boxW, boxH, 10)
	dc.Stroke()

	for i, e := range layout.Top {
		ry := y + 18 + 16*float64(i)
		c, err := colorful.Hex(e.Color)
		if err != nil {
			c = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
		}
		dc.SetColor(c)
		dc.DrawRoundedRectangle(x+12, ry-7, 12, 12, 3)
		dc.Fill()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(fmt.Sprintf("%s %s", e.Name, e.Size), x+30, ry, 0, 0.5)
	}
}

func renderSVGToWriter(w io.Writer, layout layoutResult) {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Title(layout.Summary.Title)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)
	drawTopEntriesSVG(canvas, layout)

	for _, a := range layout.Arcs {
		canvas.Group()
		canvas.Title(fmt.Sprintf("%s - %s", a.Node.Path, metafile.FormatBytes(a.Node.Bytes)))
		canvas.Path(arcPath(layout.CX, layout.CY, a),
			fmt.Sprintf("fill:%s;fill-rule:evenodd;stroke:%s;stroke-width:1", a.FillColor().Hex(), css(colorStroke)))
		canvas.Gend()
	}

	if layout.Center != "" {
		canvas.Text(int(layout.CX), int(layout.CY)+6, layout.Center,
			fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;font-weight:bold;text-anchor:middle", css(colorText)))
	}
	canvas.End()
}

// arcPath is the SVG path of an annular sector. Full circles become two
// concentric circles filled even-odd.
func arcPath(cx, cy float64, a sunburst.Arc) string {
	if a.FullCircle {
		d := circlePath(cx, cy, a.OuterRadius)
		if a.InnerRadius > 0 {
			d += " " + circlePath(cx, cy, a.InnerRadius)
		}
		return d
	}

	end := a.StartAngle + a.SweepAngle
	large := 0
	if a.SweepAngle > math.Pi {
		large = 1
	}
	x0, y0 := polar(cx, cy, a.OuterRadius, a.StartAngle)
	x1, y1 := polar(cx, cy, a.OuterRadius, end)

	var sb strings.Builder
	fmt.Fprintf(&sb, "M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f", x0, y0, a.OuterRadius, a.OuterRadius, large, x1, y1)
	if a.InnerRadius > 0 {
		x2, y2 := polar(cx, cy, a.InnerRadius, end)
		x3, y3 := polar(cx, cy, a.InnerRadius, a.StartAngle)
		fmt.Fprintf(&sb, " L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f", x2, y2, a.InnerRadius, a.InnerRadius, large, x3, y3)
	} else {
		fmt.Fprintf(&sb, " L%.2f %.2f", cx, cy)
	}
	sb.WriteString(" Z")
	return sb.String()
}

func circlePath(cx, cy, r float64) string {
	return fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 1 1 %.2f %.2f A%.2f %.2f 0 1 1 %.2f %.2f Z",
		cx+r, cy, r, r, cx-r, cy, r, r, cx+r, cy)
}

func polar(cx, cy, r, angle float64) (float64, float64) {
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("root: %s  total: %s", layout.Summary.Root, layout.Summary.Total), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("files: %d  rings: %d", layout.Summary.Files, layout.Summary.MaxDepth), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 104, fmt.Sprintf("largest: %s", layout.Summary.Largest), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawTopEntriesSVG(canvas *svg.SVG, layout layoutResult) {
	if len(layout.Top) == 0 {
		return
	}
	boxW := 200
	boxH := 24 + 16*len(layout.Top)
	x := layout.Width - boxW - 24
	y := 24
	canvas.Roundrect(x, y, boxW, boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	for i, e := range layout.Top {
		ry := y + 18 + 16*i
		canvas.Roundrect(x+12, ry-7, 12, 12, 3, 3, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", e.Color, css(colorStroke)))
		canvas.Text(x+30, ry+4, fmt.Sprintf("%s %s", e.Name, e.Size), fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
