package sunburst_test

import (
	"math"
	"testing"

	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

func TestHitTestScenario(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	h := sunburst.HitTester{Radius: sunburst.DefaultRadius()}
	r := h.Radius
	full := sunburst.FullCircle()

	tests := []struct {
		name string
		x, y float64
		want string // "" means nil
	}{
		// Screen y grows downward, so (0, -r) is twelve o'clock.
		{"b just past twelve", 1, -(r.At(1) + r.At(2)) / 2, "b"},
		{"a.js just past nine o'clock", -(r.At(1) + r.At(2)) / 2, -1, "a.js"},
		{"c.js ring", (r.At(2) + r.At(3)) / 2, 0, "b/c.js"},
		{"nothing beside a.js", -(r.At(2) + r.At(3)) / 2, -1, ""},
		{"outside every ring", r.At(5), 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := h.HitTest(tree.Root, full, tt.x, tt.y)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("HitTest = %q, want nil", got.Path)
			case tt.want != "" && (got == nil || got.Path != tt.want):
				t.Errorf("HitTest = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestHitTestCenter(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	h := sunburst.HitTester{Radius: sunburst.DefaultRadius()}
	b := tree.Find("b")

	if got := h.HitTest(tree.Root, sunburst.FullCircle(), 0, 0); got != nil {
		t.Errorf("center of the tree root = %q, want nil", got.Path)
	}
	if got := h.HitTest(b, sunburst.FullCircle(), 0, 0); got != tree.Root {
		t.Errorf("center while zoomed into b = %v, want root", got)
	}
}

func TestHitTestMaxRadius(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	r := sunburst.DefaultRadius()
	h := sunburst.HitTester{Radius: r, MaxRadius: r.At(2)}

	x, y := testutil.InteriorPoint(r, sunburst.Wedge{Depth: 1, StartAngle: -math.Pi / 2, SweepAngle: 1.5 * math.Pi})
	if got := h.HitTest(tree.Root, sunburst.FullCircle(), x, y); got == nil || got.Path != "b" {
		t.Errorf("ring 1 within bound = %v, want b", got)
	}
	x, y = testutil.InteriorPoint(r, sunburst.Wedge{Depth: 2, StartAngle: -math.Pi / 2, SweepAngle: 1.5 * math.Pi})
	if got := h.HitTest(tree.Root, sunburst.FullCircle(), x, y); got != nil {
		t.Errorf("ring 2 beyond bound = %q, want nil", got.Path)
	}
}

func TestHitTestRoundTrip(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.MaxDepth = 5
	tree := sunburst.Build(testutil.New(cfg).Metafile(), sunburst.BuildOptions{})
	h := sunburst.HitTester{Radius: sunburst.DefaultRadius()}

	checked := 0
	sunburst.Walk(tree.Root, sunburst.FullCircle(), func(n *sunburst.Node, w sunburst.Wedge) bool {
		if n == tree.Root || w.SweepAngle <= 0 {
			return true
		}
		x, y := testutil.InteriorPoint(h.Radius, w)
		if got := h.HitTest(tree.Root, sunburst.FullCircle(), x, y); got != n {
			t.Errorf("interior point of %q hit %v", n.Path, got)
		}
		checked++
		return true
	})
	if checked == 0 {
		t.Fatal("no nodes checked")
	}
}

func TestHitTestZoomedView(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b := tree.Find("b")
	h := sunburst.HitTester{Radius: sunburst.DefaultRadius()}

	// Zoomed into b, c.js fills ring 1.
	x, y := testutil.InteriorPoint(h.Radius, sunburst.Wedge{Depth: 1, StartAngle: 2, SweepAngle: 0.1})
	if got := h.HitTest(b, sunburst.FullCircle(), x, y); got == nil || got.Path != "b/c.js" {
		t.Errorf("HitTest = %v, want b/c.js", got)
	}
}
