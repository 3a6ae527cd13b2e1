package sunburst

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// StartAngle is where the full-circle view begins: twelve o'clock.
const StartAngle = -math.Pi / 2

// Wedge places a node in polar space around the canvas center. Depth selects
// the ring and is fractional while a zoom is animating.
type Wedge struct {
	Depth      float64
	StartAngle float64
	SweepAngle float64
}

// FullCircle is the canonical wedge of the node filling the view.
func FullCircle() Wedge {
	return Wedge{Depth: 0, StartAngle: StartAngle, SweepAngle: 2 * math.Pi}
}

// End returns the angle at which the wedge stops.
func (w Wedge) End() float64 {
	return w.StartAngle + w.SweepAngle
}

// ApproxEqual compares every component within tol, absolute or relative.
func (w Wedge) ApproxEqual(o Wedge, tol float64) bool {
	return scalar.EqualWithinAbsOrRel(w.Depth, o.Depth, tol, tol) &&
		scalar.EqualWithinAbsOrRel(w.StartAngle, o.StartAngle, tol, tol) &&
		scalar.EqualWithinAbsOrRel(w.SweepAngle, o.SweepAngle, tol, tol)
}

func lerpWedge(a, b Wedge, t float64) Wedge {
	return Wedge{
		Depth:      a.Depth + (b.Depth-a.Depth)*t,
		StartAngle: a.StartAngle + (b.StartAngle-a.StartAngle)*t,
		SweepAngle: a.SweepAngle + (b.SweepAngle-a.SweepAngle)*t,
	}
}

// childWedge is the single place proportional subdivision happens. Layout,
// NarrowSlice, hit-testing and painting all go through it so they agree to
// the last bit.
func childWedge(parent *Node, w Wedge, bytesSoFar, childBytes int64) Wedge {
	cw := Wedge{Depth: w.Depth + 1, StartAngle: w.StartAngle}
	if parent.Bytes <= 0 {
		return cw
	}
	total := float64(parent.Bytes)
	cw.StartAngle += w.SweepAngle * float64(bytesSoFar) / total
	cw.SweepAngle = float64(childBytes) / total * w.SweepAngle
	return cw
}

// eachChild visits n's children in order with their wedges until fn returns
// false.
func eachChild(n *Node, w Wedge, fn func(c *Node, cw Wedge) bool) {
	var bytesSoFar int64
	for _, c := range n.Children {
		if !fn(c, childWedge(n, w, bytesSoFar, c.Bytes)) {
			return
		}
		bytesSoFar += c.Bytes
	}
}

// Placement is a child together with the wedge Layout gave it.
type Placement struct {
	Node  *Node
	Wedge Wedge
}

// Layout divides w among n's children proportionally to their bytes, in
// order, without gaps. A zero-byte node gives every child an empty sweep.
func Layout(n *Node, w Wedge) []Placement {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	out := make([]Placement, 0, len(n.Children))
	eachChild(n, w, func(c *Node, cw Wedge) bool {
		out = append(out, Placement{Node: c, Wedge: cw})
		return true
	})
	return out
}

// Walk visits n and its descendants top-down with their wedges. Returning
// false from fn skips that node's subtree.
func Walk(n *Node, w Wedge, fn func(n *Node, w Wedge) bool) {
	if n == nil || !fn(n, w) {
		return
	}
	eachChild(n, w, func(c *Node, cw Wedge) bool {
		Walk(c, cw, fn)
		return true
	})
}

// NarrowSlice returns the wedge node occupies when ancestor occupies w. It
// follows node's real parent chain rather than laying out from the top. If
// ancestor is not an ancestor of node, the narrowing stops at the tree root.
func NarrowSlice(ancestor, node *Node, w Wedge) Wedge {
	if node == nil || node == ancestor || node.Parent == nil {
		return w
	}
	parent := node.Parent
	w = NarrowSlice(ancestor, parent, w)

	var bytesSoFar int64
	for _, c := range parent.Children {
		if c == node {
			return childWedge(parent, w, bytesSoFar, c.Bytes)
		}
		bytesSoFar += c.Bytes
	}
	w.Depth++
	return w
}
