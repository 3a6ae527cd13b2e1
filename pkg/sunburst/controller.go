package sunburst

import (
	"slices"
	"time"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
)

// Presenter is the presentation side of the chart: the panel listing that
// follows the selection, and the dialog explaining a single file.
type Presenter interface {
	// Refresh is called after the current or hovered node changed.
	Refresh()
	// ShowDetail is called when a file (a node without children) is activated.
	ShowDetail(m *metafile.Metafile, path string, bytes int64)
}

type nopPresenter struct{}

func (nopPresenter) Refresh() {}
func (nopPresenter) ShowDetail(*metafile.Metafile, string, int64) {}

// ControllerOptions configures NewController. Zero values select defaults.
type ControllerOptions struct {
	Presenter Presenter
	Radius    RadiusFunc
	MaxRadius float64
	Duration  time.Duration
}

// Controller owns the mutable view state: the current node, the hovered node,
// the zoom history and the animation. All methods must be called from one
// goroutine, the one delivering input events and frame ticks.
type Controller struct {
	tree      *Tree
	meta      *metafile.Metafile
	presenter Presenter
	anim      *Animator
	hit       HitTester

	current *Node
	hovered *Node
	history []*Node
}

// NewController starts with the tree root as the current node.
func NewController(tree *Tree, meta *metafile.Metafile, sched Scheduler, opts ControllerOptions) *Controller {
	if opts.Presenter == nil {
		opts.Presenter = nopPresenter{}
	}
	if opts.Radius == (RadiusFunc{}) {
		opts.Radius = DefaultRadius()
	}
	return &Controller{
		tree:      tree,
		meta:      meta,
		presenter: opts.Presenter,
		anim:      NewAnimator(tree.Root, sched, opts.Duration),
		hit:       HitTester{Radius: opts.Radius, MaxRadius: opts.MaxRadius},
		current:   tree.Root,
	}
}

// Tree returns the tree being shown.
func (c *Controller) Tree() *Tree { return c.tree }

// Metafile returns the dataset the tree was built from.
func (c *Controller) Metafile() *metafile.Metafile { return c.meta }

// Animator exposes the animation state for renderers.
func (c *Controller) Animator() *Animator { return c.anim }

// Current returns the logical current node. It changes immediately on
// navigation even while the animation is still catching up.
func (c *Controller) Current() *Node { return c.current }

// Hovered returns the hovered node, or nil.
func (c *Controller) Hovered() *Node { return c.hovered }

// History returns a copy of the zoom history, oldest first.
func (c *Controller) History() []*Node { return slices.Clone(c.history) }

// Radius returns the radius function used for hit-testing and painting.
func (c *Controller) Radius() RadiusFunc { return c.hit.Radius }

// MaxRadius returns the canvas bound.
func (c *Controller) MaxRadius() float64 { return c.hit.MaxRadius }

// SetMaxRadius updates the canvas bound after a resize and requests a redraw.
func (c *Controller) SetMaxRadius(r float64) {
	if c.hit.MaxRadius == r {
		return
	}
	c.hit.MaxRadius = r
	c.anim.requestFrame()
}

// Tick advances the animation; it reports whether more frames are needed.
func (c *Controller) Tick() bool {
	return c.anim.Tick()
}

// SelectCurrent navigates to n directly, as the panel and breadcrumb do. It
// clears the zoom history.
func (c *Controller) SelectCurrent(n *Node) {
	if n == nil || n == c.current {
		return
	}
	c.navigate(n, nil)
}

func (c *Controller) navigate(n *Node, history []*Node) {
	if n == c.current {
		c.history = history
		return
	}
	c.current = n
	c.history = history
	if c.anim.Sync(c.current, c.hovered) == TransitionSnap {
		debug.Log("sunburst: unrelated navigation to %q, dropping history", n.Path)
		c.history = nil
	}
	c.presenter.Refresh()
}

// SelectHovered changes the hovered node; nil clears it.
func (c *Controller) SelectHovered(n *Node) {
	if n == c.hovered {
		return
	}
	c.hovered = n
	c.anim.Sync(c.current, c.hovered)
	c.presenter.Refresh()
}

// HitTest resolves a point relative to the canvas center against the
// currently animated view.
func (c *Controller) HitTest(x, y float64) *Node {
	defer metrics.Timer(metrics.HitTest)()
	root, w := c.anim.Animated()
	return c.hit.HitTest(root, w, x, y)
}

// Click handles activation of n as returned by HitTest. Clicking the center
// (the animated root's parent) pops the zoom history when there is one;
// clicking anything else pushes the current node. Files open the detail
// dialog instead of navigating.
func (c *Controller) Click(n *Node) {
	if n == nil {
		return
	}
	animated, _ := c.anim.Animated()

	var stack []*Node
	if n != animated.Parent {
		stack = append(slices.Clone(c.history), c.current)
	} else if len(c.history) > 0 {
		n = c.history[len(c.history)-1]
		stack = slices.Clone(c.history[:len(c.history)-1])
	}

	if n.IsDir() {
		c.navigate(n, stack)
		return
	}
	c.showDetail(n)
}

// Activate is the panel-row action: enter directories, explain files.
func (c *Controller) Activate(n *Node) {
	if n == nil {
		return
	}
	if n.IsDir() {
		c.SelectCurrent(n)
		return
	}
	c.showDetail(n)
}

func (c *Controller) showDetail(n *Node) {
	c.presenter.ShowDetail(c.meta, n.Path, n.Bytes)
}

// PointerMove hovers whatever is under the pointer and returns it.
func (c *Controller) PointerMove(x, y float64) *Node {
	n := c.HitTest(x, y)
	c.SelectHovered(n)
	return n
}

// PointerLeave clears the hover when the pointer leaves the chart.
func (c *Controller) PointerLeave() {
	c.SelectHovered(nil)
}

// PointerClick hit-tests and clicks in one step.
func (c *Controller) PointerClick(x, y float64) {
	c.Click(c.HitTest(x, y))
}

// Tooltip is the text shown next to the pointer, split so the name can be
// emphasised.
type Tooltip struct {
	Prefix string
	Name   string
	Size   string
}

func (t Tooltip) String() string {
	return t.Prefix + t.Name + " - " + t.Size
}

// Tooltip describes n. It reports false for nil and for the zoom-out
// affordance at the center.
func (c *Controller) Tooltip(n *Node) (Tooltip, bool) {
	animated, _ := c.anim.Animated()
	if n == nil || n == animated.Parent {
		return Tooltip{}, false
	}
	tip := Tooltip{Name: n.Name, Size: metafile.FormatBytes(n.Bytes)}
	if n == c.tree.Root {
		tip.Name = c.tree.Root.Path
	}
	if n.IsDir() {
		tip.Name += "/"
	}
	if n.Parent != nil && n.Parent != c.tree.Root {
		tip.Prefix = c.tree.RelPath(n.Parent) + "/"
	}
	return tip, true
}

// CenterLabel is the size printed in the middle of the chart. It is only
// shown while the visible root sits at depth zero.
func (c *Controller) CenterLabel() (string, bool) {
	_, w := c.anim.Animated()
	if w.Depth != 0 {
		return "", false
	}
	target, _ := c.anim.Target()
	return metafile.FormatBytes(target.Bytes), true
}

// PaintView assembles the paint input for the current frame.
func (c *Controller) PaintView() PaintView {
	root, w := c.anim.Animated()
	return PaintView{
		Root:      root,
		Wedge:     w,
		Hovered:   c.hovered,
		Radius:    c.hit.Radius,
		MaxRadius: c.hit.MaxRadius,
	}
}
