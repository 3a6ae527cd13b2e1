package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/sunburst"
)

// AngleTolerance is the slack allowed when comparing computed angles.
const AngleTolerance = 1e-9

// TB is the part of testing.TB the assertions need. *rapid.T satisfies it too.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// AssertTreeInvariants checks byte conservation, child ordering and parent
// links for every node of tree.
func AssertTreeInvariants(t TB, tree *sunburst.Tree) {
	t.Helper()
	if tree.Root.Parent != nil {
		t.Errorf("root %q has a parent", tree.Root.Path)
	}
	sunburst.Walk(tree.Root, sunburst.FullCircle(), func(n *sunburst.Node, _ sunburst.Wedge) bool {
		var sum int64
		for i, c := range n.Children {
			sum += c.Bytes
			if c.Parent != n {
				t.Errorf("child %q of %q has wrong parent", c.Path, n.Path)
			}
			if i == 0 {
				continue
			}
			prev := n.Children[i-1]
			if prev.Bytes < c.Bytes || (prev.Bytes == c.Bytes && prev.Path >= c.Path) {
				t.Errorf("children of %q out of order: %q(%d) before %q(%d)",
					n.Path, prev.Path, prev.Bytes, c.Path, c.Bytes)
			}
		}
		if len(n.Children) > 0 && n.Bytes < sum {
			t.Errorf("node %q has %d bytes but children sum to %d", n.Path, n.Bytes, sum)
		}
		if n.Color == "" {
			t.Errorf("node %q has no color", n.Path)
		}
		return true
	})
}

// AssertRootTotal checks that the root holds every non-source-map byte.
func AssertRootTotal(t TB, tree *sunburst.Tree, m *metafile.Metafile) {
	t.Helper()
	if want := m.TotalBytes(nil); tree.Root.Bytes != want {
		t.Errorf("root bytes = %d, want %d", tree.Root.Bytes, want)
	}
}

// AssertWedge compares two wedges within AngleTolerance.
func AssertWedge(t TB, label string, got, want sunburst.Wedge) {
	t.Helper()
	if !got.ApproxEqual(want, AngleTolerance) {
		t.Errorf("%s: wedge = %+v, want %+v", label, got, want)
	}
}

// InteriorPoint returns a canvas point strictly inside the ring and sweep of
// w, relative to the canvas center.
func InteriorPoint(r sunburst.RadiusFunc, w sunburst.Wedge) (x, y float64) {
	radius := (r.At(w.Depth) + r.At(w.Depth+1)) / 2
	angle := w.StartAngle + w.SweepAngle/2
	return radius * math.Cos(angle), radius * math.Sin(angle)
}

// WriteMetafile writes m as JSON into dir and returns the path.
func WriteMetafile(t *testing.T, dir, name string, m *metafile.Metafile) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(ToJSON(m)), 0o644); err != nil {
		t.Fatalf("failed to write metafile: %v", err)
	}
	return path
}
