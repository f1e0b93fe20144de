package router

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/fsroutes/pkg/routepath"
	"github.com/vango-dev/fsroutes/pkg/segment"
)

// Generator builds route trees from discovered modules.
// It holds no state between calls and may be reused.
type Generator struct {
	opts Options
}

// New creates a Generator. Empty option fields take their defaults.
func New(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

// Generate builds routes with opts from a path → loader map.
func Generate(modules map[string]Loader, opts Options) ([]*Route, error) {
	return New(opts).Generate(modules)
}

// Options returns the options in effect, defaults included.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate builds routes from a path → loader map.
//
// Map keys are processed in sorted order. When two paths resolve to the same
// directory the one sorting last wins.
func (g *Generator) Generate(modules map[string]Loader) ([]*Route, error) {
	return g.GenerateModules(SortedModules(modules))
}

// GenerateModules builds routes from modules in the given order. When two
// modules resolve to the same directory the later one wins.
func (g *Generator) GenerateModules(modules []Module) ([]*Route, error) {
	start := time.Now()
	routes, stats, err := g.generate(modules)
	if g.opts.Observer != nil {
		g.opts.Observer.ObserveGenerate(stats, time.Since(start), err)
	}
	return routes, err
}

func (g *Generator) generate(modules []Module) ([]*Route, Stats, error) {
	var stats Stats
	root := newTreeNode()

	for _, m := range modules {
		segments, ok := g.Segments(m.Path)
		if !ok || m.Loader == nil {
			stats.Ignored++
			g.opts.Logger.Debug("ignoring module", "path", m.Path)
			continue
		}

		if root.insert(segments, m.Loader) {
			g.opts.Logger.Debug("route directory registered twice, keeping last",
				"path", m.Path,
				"dir", routepath.EnsureLeadingSlash(strings.Join(segments, "/")))
		}
		stats.Modules++
	}

	c := &compiler{opts: g.opts, stats: &stats, deferred: make(map[*Route]struct{})}
	rootRoute, spilled, err := c.compile(root, nil, nil, nil)
	if err != nil {
		return nil, stats, err
	}

	routes := make([]*Route, 0, len(spilled)+1)
	if rootRoute != nil {
		routes = append(routes, rootRoute)
	}
	routes = append(routes, spilled...)
	stats.TopLevelSpills = c.countDeferred(spilled)
	stats.Spilled += stats.TopLevelSpills

	routes, err = applyTransform(routes, nil, g.opts.TransformRoute)
	if err != nil {
		return nil, stats, err
	}

	if g.opts.ExtendRoutes != nil {
		routes, err = g.opts.ExtendRoutes(routes)
		if err != nil {
			return nil, stats, fmt.Errorf("extending routes: %w", err)
		}
	}

	stats.Routes = Count(routes)
	return routes, stats, nil
}

// Segments returns the raw directory segments of a module path, or false if
// the path does not end in the index file name.
//
//	/src/views/page.tsx            → [], true
//	/src/views/news/[id]/page.tsx  → [news [id]], true
//	/src/views/news/list.tsx       → nil, false
func (g *Generator) Segments(path string) ([]string, bool) {
	if !strings.HasSuffix(path, g.opts.IndexFileName) {
		return nil, false
	}

	dir := path[:len(path)-len(g.opts.IndexFileName)]
	if loc := g.opts.PathPrefix.FindStringIndex(dir); loc != nil {
		dir = dir[:loc[0]] + dir[loc[1]:]
	}

	return segment.Split(routepath.StripLeadingSlash(dir)), true
}

// SortedModules converts a path → loader map to modules sorted by path.
func SortedModules(modules map[string]Loader) []Module {
	out := make([]Module, 0, len(modules))
	for path, loader := range modules {
		out = append(out, Module{Path: path, Loader: loader})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
