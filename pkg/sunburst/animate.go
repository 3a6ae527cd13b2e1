package sunburst

import (
	"time"

	"github.com/vanderheijden86/burst/pkg/debug"
)

// DefaultAnimationDuration is how long a zoom transition takes.
const DefaultAnimationDuration = 350 * time.Millisecond

// Scheduler abstracts the frame loop. RequestFrame asks for Tick to be called
// once more; the viewer maps it to a tea.Tick and tests to a counter.
type Scheduler interface {
	Now() time.Time
	RequestFrame()
}

// Transition describes what Sync did with a change of the current node.
type Transition int

const (
	// TransitionNone means the current node did not change.
	TransitionNone Transition = iota
	// TransitionZoomIn animates a descendant out to the full circle.
	TransitionZoomIn
	// TransitionZoomOut animates the old focus down to its place in an ancestor.
	TransitionZoomOut
	// TransitionSnap jumps to an unrelated node without animating.
	TransitionSnap
)

func (t Transition) String() string {
	switch t {
	case TransitionZoomIn:
		return "zoom-in"
	case TransitionZoomOut:
		return "zoom-out"
	case TransitionSnap:
		return "snap"
	default:
		return "none"
	}
}

// Animator interpolates the visible root wedge between zoom levels.
//
// The animated node is the one drawn at the center. During a zoom out it is
// still the old focus, shrinking toward where it sits inside the new current
// node; once the animation ends it becomes the target node.
type Animator struct {
	sched    Scheduler
	duration time.Duration

	framePending bool
	running      bool
	start        time.Time
	instant      bool

	source   Wedge
	target   Wedge
	animated Wedge

	animatedNode *Node
	targetNode   *Node
	prevHovered  *Node
}

// NewAnimator starts at rest with root filling the view.
func NewAnimator(root *Node, sched Scheduler, duration time.Duration) *Animator {
	if duration <= 0 {
		duration = DefaultAnimationDuration
	}
	full := FullCircle()
	return &Animator{
		sched:        sched,
		duration:     duration,
		instant:      true,
		source:       full,
		target:       full,
		animated:     full,
		animatedNode: root,
		targetNode:   root,
	}
}

func (a *Animator) requestFrame() {
	if a.framePending {
		return
	}
	a.framePending = true
	a.sched.RequestFrame()
}

// Sync brings the animation in line with the logical selection. It must be
// called after every change of the current or hovered node. A change that
// arrives mid-flight restarts from the wedge currently on screen.
func (a *Animator) Sync(current, hovered *Node) Transition {
	if hovered != a.prevHovered {
		a.prevHovered = hovered
		a.requestFrame()
	}

	if current == nil || current == a.targetNode {
		return TransitionNone
	}

	a.requestFrame()
	a.running = true
	a.start = a.sched.Now()
	a.instant = false

	var tr Transition
	switch {
	case IsAncestor(a.animatedNode, current):
		a.animated = NarrowSlice(a.animatedNode, current, a.animated)
		a.target = FullCircle()
		a.animatedNode = current
		tr = TransitionZoomIn

	case IsAncestor(current, a.animatedNode):
		a.target = NarrowSlice(current, a.animatedNode, FullCircle())
		tr = TransitionZoomOut

	default:
		a.instant = true
		a.animatedNode = current
		tr = TransitionSnap
	}

	a.source = a.animated
	a.targetNode = current
	debug.Log("sunburst: %s to %q", tr, current.Path)
	return tr
}

// Tick advances the animation to Now and reports whether another frame is
// needed.
func (a *Animator) Tick() bool {
	a.framePending = false

	t := 1.0
	if !a.instant && a.duration > 0 {
		t = float64(a.sched.Now().Sub(a.start)) / float64(a.duration)
	}

	if t < 0 || t >= 1 {
		a.running = false
		a.animatedNode = a.targetNode
		a.target = FullCircle()
		a.animated = a.target
		return false
	}

	a.animated = lerpWedge(a.source, a.target, EaseInOutCubic(t))
	a.requestFrame()
	return true
}

// EaseInOutCubic is the symmetric cubic ease used for zoom transitions.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	t = 1 - t
	return 1 - 4*t*t*t
}

// Animated returns the node drawn at the center and its current wedge.
func (a *Animator) Animated() (*Node, Wedge) {
	return a.animatedNode, a.animated
}

// Source returns the wedge the running transition started from.
func (a *Animator) Source() Wedge { return a.source }

// Target returns the node and wedge the running transition is heading to.
func (a *Animator) Target() (*Node, Wedge) {
	return a.targetNode, a.target
}

// Animating reports whether a transition is still in progress.
func (a *Animator) Animating() bool { return a.running }

// FramePending reports whether a frame has been requested and not yet ticked.
func (a *Animator) FramePending() bool { return a.framePending }

// Duration returns the length of a transition.
func (a *Animator) Duration() time.Duration { return a.duration }
