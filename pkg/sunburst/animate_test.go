package sunburst_test

import (
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/burst/pkg/sunburst"
	"github.com/vanderheijden86/burst/pkg/testutil"
)

// fakeScheduler is a manual clock that counts frame requests.
type fakeScheduler struct {
	now    time.Time
	frames int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeScheduler) Now() time.Time { return f.now }
func (f *fakeScheduler) RequestFrame() { f.frames++ }
func (f *fakeScheduler) advance(d time.Duration) { f.now = f.now.Add(d) }

func bWedge() sunburst.Wedge {
	return sunburst.Wedge{Depth: 1, StartAngle: -math.Pi / 2, SweepAngle: 1.5 * math.Pi}
}

func TestAnimatorStartsAtRest(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)

	if a.Duration() != sunburst.DefaultAnimationDuration {
		t.Errorf("Duration = %v, want default", a.Duration())
	}
	n, w := a.Animated()
	if n != tree.Root || w != sunburst.FullCircle() {
		t.Errorf("Animated = %q %+v", n.Path, w)
	}
	if a.Sync(tree.Root, nil) != sunburst.TransitionNone {
		t.Error("syncing to the same node should be a no-op")
	}
	if sched.frames != 0 {
		t.Errorf("frames = %d, want 0", sched.frames)
	}
}

func TestAnimatorZoomIn(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b := tree.Find("b")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)

	if tr := a.Sync(b, nil); tr != sunburst.TransitionZoomIn {
		t.Fatalf("Sync = %v, want zoom-in", tr)
	}
	n, w := a.Animated()
	if n != b {
		t.Fatalf("animated node = %q, want b", n.Path)
	}
	testutil.AssertWedge(t, "start", w, bWedge())
	if _, target := a.Target(); target != sunburst.FullCircle() {
		t.Errorf("target = %+v, want full circle", target)
	}
	if sched.frames != 1 || !a.FramePending() {
		t.Errorf("frames = %d pending = %v, want one pending frame", sched.frames, a.FramePending())
	}
	if !a.Animating() {
		t.Error("Animating = false right after a zoom")
	}

	sched.advance(sunburst.DefaultAnimationDuration / 2)
	if !a.Tick() {
		t.Fatal("Tick at half time should want more frames")
	}
	_, w = a.Animated()
	testutil.AssertWedge(t, "half", w, sunburst.Wedge{Depth: 0.5, StartAngle: -math.Pi / 2, SweepAngle: 1.75 * math.Pi})

	sched.advance(sunburst.DefaultAnimationDuration / 2)
	if a.Tick() {
		t.Error("Tick after duration should stop")
	}
	n, w = a.Animated()
	if n != b || w != sunburst.FullCircle() {
		t.Errorf("end state = %q %+v", n.Path, w)
	}
	if a.FramePending() || a.Animating() {
		t.Error("animation still running after the last tick")
	}
}

func TestAnimatorZoomOut(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b := tree.Find("b")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)
	a.Sync(b, nil)
	sched.advance(time.Second)
	a.Tick()

	if tr := a.Sync(tree.Root, nil); tr != sunburst.TransitionZoomOut {
		t.Fatalf("Sync = %v, want zoom-out", tr)
	}
	// The old focus stays at the center and shrinks into its slot.
	n, w := a.Animated()
	if n != b || w != sunburst.FullCircle() {
		t.Errorf("start = %q %+v", n.Path, w)
	}
	target, tw := a.Target()
	if target != tree.Root {
		t.Errorf("target node = %q, want root", target.Path)
	}
	testutil.AssertWedge(t, "target", tw, bWedge())

	sched.advance(sunburst.DefaultAnimationDuration)
	a.Tick()
	n, w = a.Animated()
	if n != tree.Root || w != sunburst.FullCircle() {
		t.Errorf("end state = %q %+v", n.Path, w)
	}
}

func TestAnimatorSnapsBetweenUnrelatedNodes(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b, aJS := tree.Find("b"), tree.Find("a.js")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)
	a.Sync(b, nil)
	sched.advance(time.Second)
	a.Tick()

	if tr := a.Sync(aJS, nil); tr != sunburst.TransitionSnap {
		t.Fatalf("Sync = %v, want snap", tr)
	}
	if a.Tick() {
		t.Error("snap should finish on the first tick")
	}
	n, w := a.Animated()
	if n != aJS || w != sunburst.FullCircle() {
		t.Errorf("after snap = %q %+v", n.Path, w)
	}
}

func TestAnimatorRetargetsMidFlight(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b := tree.Find("b")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)

	a.Sync(b, nil)
	sched.advance(sunburst.DefaultAnimationDuration / 2)
	a.Tick()
	_, mid := a.Animated()

	if tr := a.Sync(tree.Root, nil); tr != sunburst.TransitionZoomOut {
		t.Fatalf("Sync = %v, want zoom-out", tr)
	}
	if a.Source() != mid {
		t.Errorf("source = %+v, want on-screen wedge %+v", a.Source(), mid)
	}
	a.Tick()
	_, w := a.Animated()
	testutil.AssertWedge(t, "no jump", w, mid)
}

func TestAnimatorDoesNotQueueFrames(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b, c := tree.Find("b"), tree.Find("b/c.js")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)

	a.Sync(b, nil)
	a.Sync(c, nil)
	a.Sync(c, b)
	if sched.frames != 1 {
		t.Errorf("frames = %d, want 1 while a frame is pending", sched.frames)
	}
	a.Tick()
	if sched.frames != 2 {
		t.Errorf("frames = %d, want 2 after an unfinished tick", sched.frames)
	}
}

func TestAnimatorHoverRequestsFrame(t *testing.T) {
	tree := sunburst.Build(testutil.Scenario(), sunburst.BuildOptions{})
	b := tree.Find("b")
	sched := newFakeScheduler()
	a := sunburst.NewAnimator(tree.Root, sched, 0)

	if tr := a.Sync(tree.Root, b); tr != sunburst.TransitionNone {
		t.Errorf("hover change reported %v", tr)
	}
	if sched.frames != 1 {
		t.Fatalf("frames = %d, want 1", sched.frames)
	}
	a.Tick()
	a.Sync(tree.Root, b)
	if sched.frames != 1 {
		t.Errorf("unchanged hover requested a frame")
	}
}

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.0625},
		{0.5, 0.5},
		{0.75, 0.9375},
		{1, 1},
	}
	for _, tt := range tests {
		if got := sunburst.EaseInOutCubic(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseInOutCubic(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for x := 0.0; x <= 1; x += 0.01 {
		if d := sunburst.EaseInOutCubic(x) + sunburst.EaseInOutCubic(1-x); math.Abs(d-1) > 1e-12 {
			t.Fatalf("ease not symmetric at %v", x)
		}
	}
}

func TestTransitionString(t *testing.T) {
	for tr, want := range map[sunburst.Transition]string{
		sunburst.TransitionNone:    "none",
		sunburst.TransitionZoomIn:  "zoom-in",
		sunburst.TransitionZoomOut: "zoom-out",
		sunburst.TransitionSnap:    "snap",
	} {
		if tr.String() != want {
			t.Errorf("%d.String() = %q, want %q", tr, tr.String(), want)
		}
	}
}
