package router

import "github.com/vango-dev/fsroutes/pkg/segment"

// treeNode is one directory level of the intermediate route tree.
type treeNode struct {
	// segment is the raw directory name; empty for the root.
	segment string

	// parsed is the parsed segment; nil for the root.
	parsed *segment.Segment

	// rawSegments is the raw path from the root to this node.
	rawSegments []string

	// component is the loader of the route file in this directory, if any.
	component Loader

	// children are keyed by raw segment.
	children map[string]*treeNode
}

// newTreeNode creates the synthetic root.
func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

// hasComponent reports whether the directory has a routable file.
func (n *treeNode) hasComponent() bool {
	return n.component != nil
}

// isStatic reports whether the node is static-rooted. The root counts as
// static.
func (n *treeNode) isStatic() bool {
	return n.parsed == nil || n.parsed.IsStatic()
}

// isAttachPoint reports whether non-static descendants may nest under n.
func (n *treeNode) isAttachPoint() bool {
	return n.isStatic() && n.hasComponent()
}

// addChild adds or retrieves the child for a raw segment.
func (n *treeNode) addChild(raw string) *treeNode {
	if child, ok := n.children[raw]; ok {
		return child
	}

	parsed := segment.Parse(raw)
	rawSegments := make([]string, len(n.rawSegments), len(n.rawSegments)+1)
	copy(rawSegments, n.rawSegments)

	child := &treeNode{
		segment:     raw,
		parsed:      &parsed,
		rawSegments: append(rawSegments, raw),
		children:    make(map[string]*treeNode),
	}
	n.children[raw] = child
	return child
}

// insert walks segments from n, creating missing nodes, and assigns loader to
// the last one. An existing loader is overwritten. It returns true if a
// loader was already set.
func (n *treeNode) insert(segments []string, loader Loader) bool {
	current := n
	for _, seg := range segments {
		current = current.addChild(seg)
	}
	replaced := current.hasComponent()
	current.component = loader
	return replaced
}
