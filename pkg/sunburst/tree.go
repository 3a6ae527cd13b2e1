// Package sunburst is the geometry and interaction engine behind the bundle
// size chart. It turns a metafile into a sorted, colored tree, partitions that
// tree into polar wedges, animates zoom transitions between wedges, and maps
// pointer positions back to tree nodes.
//
// Nothing in this package draws. Renderers consume Paint, pointer handlers
// call Controller, and a Scheduler supplies time and frame callbacks, so the
// whole engine runs headless in tests.
package sunburst

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/burst/pkg/debug"
	"github.com/vanderheijden86/burst/pkg/metafile"
	"github.com/vanderheijden86/burst/pkg/metrics"
)

// Node is one path segment of the size tree.
//
// Parent is a non-owning back-reference filled in once by Build; Children
// owns the subtree and defines angular placement order.
type Node struct {
	Path     string
	Name     string
	Bytes    int64
	Children []*Node
	Color    string
	Parent   *Node
}

// IsDir reports whether the node has children.
func (n *Node) IsDir() bool {
	return n != nil && len(n.Children) > 0
}

// Tree is the immutable result of Build.
type Tree struct {
	Root *Node
	// MaxDepth counts rings: a leaf contributes 1 and an interior node one
	// more than its deepest child.
	MaxDepth int

	prefixLen int
}

// RelPath returns n's path relative to the tree root.
func (t *Tree) RelPath(n *Node) string {
	if n == nil || len(n.Path) <= t.prefixLen {
		return ""
	}
	return n.Path[t.prefixLen:]
}

// BuildOptions configures Build. Zero values select the defaults.
type BuildOptions struct {
	// IsSourceMap excludes map artifacts from aggregation.
	IsSourceMap func(string) bool
	// Color maps the static midpoint angle of a node to a CSS color.
	Color ColorFunc
}

type trieNode struct {
	path     string
	name     string
	bytes    int64
	children map[string]*trieNode
}

func newTrieNode(path, name string) *trieNode {
	return &trieNode{path: path, name: name, children: make(map[string]*trieNode)}
}

func (t *trieNode) accumulate(path string, bytes int64) {
	t.bytes += bytes
	parent := t
	for _, part := range strings.Split(path, "/") {
		child, ok := parent.children[part]
		if !ok {
			childPath := part
			if parent != t {
				childPath = parent.path + "/" + part
			}
			child = newTrieNode(childPath, part)
			parent.children[part] = child
		}
		child.bytes += bytes
		parent = child
	}
}

func (t *trieNode) freeze() *Node {
	n := &Node{Path: t.path, Name: t.name, Bytes: t.bytes}
	if len(t.children) > 0 {
		n.Children = make([]*Node, 0, len(t.children))
		for _, c := range t.children {
			n.Children = append(n.Children, c.freeze())
		}
		sortChildren(n.Children)
	}
	return n
}

// sortChildren orders by size descending, then path ascending.
func sortChildren(children []*Node) {
	sort.Slice(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.Bytes != b.Bytes {
			return a.Bytes > b.Bytes
		}
		return a.Path < b.Path
	})
}

// Build aggregates m into a size tree. Every input is registered even when it
// contributed nothing, so tree-shaken files show up with zero bytes. A nil or
// empty metafile yields a childless zero-byte root.
func Build(m *metafile.Metafile, opts BuildOptions) *Tree {
	defer metrics.Timer(metrics.TreeBuild)()
	start := time.Now()

	isSourceMap := opts.IsSourceMap
	if isSourceMap == nil {
		isSourceMap = metafile.IsSourceMapPath
	}
	color := opts.Color
	if color == nil {
		color = HueColor
	}

	trie := newTrieNode("", "")
	if m != nil {
		for _, in := range m.InputPaths() {
			trie.accumulate(metafile.StripDisabledPathPrefix(in), 0)
		}
		for _, o := range m.OutputPaths() {
			if isSourceMap(o) {
				continue
			}
			for in, contrib := range m.Outputs[o].Inputs {
				// Negative sizes would break sum(children) == parent.
				trie.accumulate(metafile.StripDisabledPathPrefix(in), max(contrib.BytesInOutput, 0))
			}
		}
	}

	top := trie.freeze()
	root := UnwrapSingular(top)

	t := &Tree{Root: root}
	if root != top {
		t.prefixLen = len(root.Path) + 1
	}
	root.Parent = nil
	t.MaxDepth = finalize(root, Wedge{StartAngle: 0, SweepAngle: 2 * math.Pi}, color)

	debug.Log("sunburst: built tree root=%q bytes=%d maxDepth=%d in %v",
		root.Path, root.Bytes, t.MaxDepth, time.Since(start))
	return t
}

// UnwrapSingular descends while n has exactly one child. Applying it to an
// already unwrapped node returns the node unchanged.
func UnwrapSingular(n *Node) *Node {
	for n != nil && len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}

func finalize(n *Node, w Wedge, color ColorFunc) int {
	n.Color = color(w.StartAngle + w.SweepAngle/2)
	maxDepth := 0
	eachChild(n, w, func(c *Node, cw Wedge) bool {
		c.Parent = n
		if d := finalize(c, cw, color); d > maxDepth {
			maxDepth = d
		}
		return true
	})
	return maxDepth + 1
}

// IsAncestor reports whether parent is child or one of its ancestors.
func IsAncestor(parent, child *Node) bool {
	for ; child != nil; child = child.Parent {
		if child == parent {
			return true
		}
	}
	return false
}

// Find returns the node whose path equals path, or nil.
func (t *Tree) Find(path string) *Node {
	var found *Node
	Walk(t.Root, FullCircle(), func(n *Node, _ Wedge) bool {
		if found == nil && n.Path == path {
			found = n
		}
		return found == nil
	})
	return found
}

// Lookup is Find for user input: surrounding slashes are ignored and the
// path may be relative to an unwrapped root.
func (t *Tree) Lookup(path string) *Node {
	path = strings.Trim(path, "/")
	if path == "" {
		return t.Root
	}
	if n := t.Find(path); n != nil {
		return n
	}
	if t.Root.Path != "" {
		return t.Find(t.Root.Path + "/" + path)
	}
	return nil
}
