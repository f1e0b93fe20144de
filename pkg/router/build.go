package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vango-dev/fsroutes/pkg/routepath"
)

// compiler turns the intermediate tree into route trees.
type compiler struct {
	opts  Options
	stats *Stats

	// deferred holds the routes deferred for being non-static.
	deferred map[*Route]struct{}
}

// compile converts node and its subtree.
//
// Non-static child routes are always deferred into the spill list. A node that
// is static and owns a component is an attachment point: it claims its own
// deferred children and everything its children spilled. Any other node
// passes what it collected upward; a node without a component passes its
// direct children upward too, since it produces no route to nest them under.
//
// Claimed spills come before the node's own deferred children, so a deeper
// dynamic route such as /news/:id/:tab? is listed ahead of /news/:id when
// both attach to /news.
//
// ancestor is the nearest static ancestor with a component, or nil.
func (c *compiler) compile(node *treeNode, normalized, raw []string, ancestor *treeNode) (*Route, []*Route, error) {
	if node.parsed != nil && node.parsed.PathPart != "" {
		normalized = appendCopy(normalized, node.parsed.PathPart)
	}
	if node.segment != "" {
		raw = appendCopy(raw, node.segment)
	}

	attach := node.isAttachPoint()
	next := ancestor
	if attach {
		next = node
	}

	var direct, spilled []*Route

	for _, child := range sortedChildren(node) {
		route, childSpilled, err := c.compile(child, normalized, raw, next)
		if err != nil {
			return nil, nil, err
		}

		if route != nil {
			if child.isStatic() {
				direct = append(direct, route)
			} else {
				c.logDefer(route, next)
				c.deferred[route] = struct{}{}
				spilled = append(spilled, route)
			}
		}

		if len(childSpilled) > 0 {
			if attach {
				c.stats.Spilled += c.countDeferred(childSpilled)
				direct = append(direct, childSpilled...)
			} else {
				spilled = append(spilled, childSpilled...)
			}
		}
	}

	if !node.hasComponent() {
		return nil, append(direct, spilled...), nil
	}

	if attach {
		direct = append(direct, spilled...)
		spilled = nil
	}

	route, err := c.newRoute(node, normalized, raw, direct)
	if err != nil {
		return nil, nil, err
	}
	return route, spilled, nil
}

// newRoute builds the output route for a node that owns a component.
func (c *compiler) newRoute(node *treeNode, normalized, raw []string, children []*Route) (*Route, error) {
	absolutePath := routepath.JoinAbsolute(normalized)

	name, err := c.opts.ResolveRouteName(NameContext{
		Segments:     normalized,
		RawSegments:  raw,
		AbsolutePath: absolutePath,
		IsRoot:       len(raw) == 0,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving name for %s: %w", absolutePath, err)
	}

	return &Route{
		Path:        absolutePath,
		Name:        name,
		Component:   node.component,
		Children:    children,
		RawPath:     routepath.RawPath(raw),
		Segments:    appendCopy(nil, normalized...),
		RawSegments: appendCopy(nil, raw...),
	}, nil
}

// countDeferred returns how many of routes were deferred for being
// non-static. Static routes passing through a directory without a component
// are not counted.
func (c *compiler) countDeferred(routes []*Route) int {
	n := 0
	for _, r := range routes {
		if _, ok := c.deferred[r]; ok {
			n++
		}
	}
	return n
}

func (c *compiler) logDefer(route *Route, ancestor *treeNode) {
	logger := c.opts.Logger
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	target := "top level"
	if ancestor != nil {
		target = routepath.EnsureLeadingSlash(routepath.RawPath(ancestor.rawSegments))
	}
	logger.Debug("deferring dynamic route", "path", route.Path, "toward", target)
}

// sortedChildren returns the children of n ordered by raw segment.
func sortedChildren(n *treeNode) []*treeNode {
	children := make([]*treeNode, 0, len(n.children))
	for _, child := range n.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].segment < children[j].segment
	})
	return children
}

// appendCopy returns a new slice holding s followed by extra.
func appendCopy(s []string, extra ...string) []string {
	out := make([]string, 0, len(s)+len(extra))
	out = append(out, s...)
	return append(out, extra...)
}
