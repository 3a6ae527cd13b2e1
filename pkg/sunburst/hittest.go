package sunburst

import "math"

// HitTester maps canvas positions back to nodes. It mirrors Paint: the same
// radius function, the same canvas bound, the same subdivision.
type HitTester struct {
	Radius RadiusFunc
	// MaxRadius culls rings that would fall outside the canvas. Zero means
	// no bound.
	MaxRadius float64
}

// HitTest resolves a point given relative to the canvas center, with y
// growing downward as on screen. root and w are the animated root and its
// wedge. Hitting root's own ring returns root's parent, which is how the
// center of the chart acts as a zoom-out button.
func (h HitTester) HitTest(root *Node, w Wedge, x, y float64) *Node {
	return h.HitTestPolar(root, w, math.Hypot(x, y), math.Atan2(y, x))
}

// HitTestPolar is HitTest for a point already in polar form.
func (h HitTester) HitTestPolar(root *Node, w Wedge, radius, angle float64) *Node {
	if root == nil {
		return nil
	}
	return h.visit(root, root, w, h.Radius.At(w.Depth), radius, angle)
}

func (h HitTester) visit(n, root *Node, w Wedge, inner, radius, angle float64) *Node {
	outer := h.Radius.At(w.Depth + 1)
	if h.MaxRadius > 0 && outer > h.MaxRadius {
		return nil
	}

	if radius >= inner && radius < outer {
		if normalizeAngle(angle-w.StartAngle) < w.SweepAngle {
			if n == root {
				return n.Parent
			}
			return n
		}
	}

	var hit *Node
	eachChild(n, w, func(c *Node, cw Wedge) bool {
		hit = h.visit(c, root, cw, outer, radius, angle)
		return hit == nil
	})
	return hit
}

// normalizeAngle folds a into [0, 2π).
func normalizeAngle(a float64) float64 {
	turns := a / (2 * math.Pi)
	turns -= math.Floor(turns)
	a = turns * 2 * math.Pi
	if a >= 2*math.Pi {
		return 0
	}
	return a
}
