package sunburst

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/burst/pkg/metrics"
)

// Arc is one ring segment a renderer must draw.
type Arc struct {
	Node        *Node
	InnerRadius float64
	OuterRadius float64
	StartAngle  float64
	// SweepAngle is widened to a minimum visible width; children are laid
	// out from the unclamped sweep.
	SweepAngle float64

	// Root marks the visible root. Chain marks every sibling after the first,
	// whose leading edge is already drawn by its predecessor.
	Root  bool
	Chain bool
	// FullCircle is set when the arc closes on itself and has no radial edges.
	FullCircle bool
	// Hover is set on the hovered node and everything below it. Highlight
	// is set inside the hovered subtree and on the hovered node's children.
	Hover     bool
	Highlight bool
}

// Contains reports whether the polar point lies on the arc.
func (a Arc) Contains(radius, angle float64) bool {
	if radius < a.InnerRadius || radius >= a.OuterRadius {
		return false
	}
	return a.FullCircle || normalizeAngle(angle-a.StartAngle) < a.SweepAngle
}

var (
	fallbackColor  = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
	highlightColor = colorful.Color{R: 1, G: 1, B: 1}
)

// FillColor is the node color, washed halfway to white when highlighted.
// Unparsable node colors fall back to grey.
func (a Arc) FillColor() colorful.Color {
	c, err := colorful.Hex(a.Node.Color)
	if err != nil {
		c = fallbackColor
	}
	if a.Highlight {
		c = c.BlendRgb(highlightColor, 0.5)
	}
	return c.Clamped()
}

// PaintView is everything Paint needs to know about the visible state.
type PaintView struct {
	Root      *Node
	Wedge     Wedge
	Hovered   *Node
	Radius    RadiusFunc
	MaxRadius float64
}

const (
	minArcWidth  = 2.0 // px at the ring's middle radius
	minTailDelta = 1.5 // px between consecutive tail edges
)

// Paint lists the arcs to draw in back-to-front order.
//
// Slices are widened to at least 2px and a slice whose tail edge lands
// within 1.5px of the previous sibling's tail is dropped with its subtree, so
// runs of tiny files don't merge into a solid smear. An empty dataset, a
// childless zero-byte root, paints nothing.
func Paint(v PaintView) []Arc {
	defer metrics.Timer(metrics.Paint)()
	if v.Root == nil || (v.Root.Bytes == 0 && len(v.Root.Children) == 0) {
		return nil
	}
	var arcs []Arc
	p := painter{view: v, arcs: &arcs}
	p.node(v.Root, v.Wedge, v.Radius.At(v.Wedge.Depth), true, false, false, math.Inf(-1))
	return arcs
}

type painter struct {
	view PaintView
	arcs *[]Arc
}

func (p painter) node(n *Node, w Wedge, inner float64, root, chain, hover bool, prevTail float64) float64 {
	outer := p.view.Radius.At(w.Depth + 1)
	if p.view.MaxRadius > 0 && outer > p.view.MaxRadius {
		return prevTail
	}
	if n == p.view.Hovered {
		hover = true
	}

	middle := (inner + outer) / 2
	if middle <= 0 {
		return prevTail
	}
	tail := w.End()
	if tail-prevTail < minTailDelta/middle {
		return prevTail
	}
	sweep := math.Max(w.SweepAngle, minArcWidth/middle)

	*p.arcs = append(*p.arcs, Arc{
		Node:        n,
		InnerRadius: inner,
		OuterRadius: outer,
		StartAngle:  w.StartAngle,
		SweepAngle:  sweep,
		Root:        root,
		Chain:       chain,
		FullCircle:  sweep >= 2*math.Pi,
		Hover:       hover,
		Highlight:   p.view.Hovered != nil && (hover || n.Parent == p.view.Hovered),
	})

	childTail := math.Inf(-1)
	first := true
	eachChild(n, w, func(c *Node, cw Wedge) bool {
		childTail = p.node(c, cw, outer, false, !first, hover, childTail)
		first = false
		return true
	})
	return tail
}
