package router

import (
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/fsroutes/pkg/routepath"
)

// Loader is an opaque lazy component loader. The router carries it through to
// the output unchanged and never invokes it. Nil loaders are ignored.
type Loader any

// Module is one discovered route file: its path and component loader.
type Module struct {
	// Path is the discovered file path (e.g., "/src/views/news/page.tsx").
	Path string

	// Loader is the lazy component loader for the file.
	Loader Loader
}

// Route is one node of the generated route tree.
//
// A Route is not modified after it is built, except for Children which the
// transform pipeline may replace.
type Route struct {
	// Path is the absolute normalized path (e.g., "/news/:id").
	Path string

	// Name is the route name. Names are unique by convention only.
	Name string

	// Component is the loader of the route file.
	Component Loader

	// Children are the nested routes, in output order.
	Children []*Route

	// RawPath is the unnormalized path without leading slash
	// (e.g., "news/[id]"), or "/" for the root.
	RawPath string

	// Segments are the normalized path parts, root to leaf.
	Segments []string

	// RawSegments are the raw directory names, root to leaf.
	RawSegments []string
}

// IsRoot reports whether the route was generated for the routes folder itself.
func (r *Route) IsRoot() bool {
	return len(r.RawSegments) == 0
}

// RelativePath returns the route path relative to the route it is nested
// under. Top-level routes (nil parent) keep their absolute path.
func (r *Route) RelativePath(parent *Route) string {
	if parent == nil {
		return r.Path
	}
	return routepath.Relative(parent.Path, r.Path)
}

// Walk calls fn for r and every descendant, parents first. Returning false
// from fn skips that route's children.
func (r *Route) Walk(fn func(route, parent *Route) bool) {
	r.walk(nil, fn)
}

func (r *Route) walk(parent *Route, fn func(route, parent *Route) bool) {
	if !fn(r, parent) {
		return
	}
	for _, child := range r.Children {
		child.walk(r, fn)
	}
}

// Count returns the number of routes in routes, including all descendants.
func Count(routes []*Route) int {
	n := 0
	for _, route := range routes {
		route.Walk(func(*Route, *Route) bool {
			n++
			return true
		})
	}
	return n
}

// NameContext is passed to route name resolvers.
type NameContext struct {
	// Segments are the normalized path parts.
	Segments []string

	// RawSegments are the raw directory names.
	RawSegments []string

	// AbsolutePath is the joined route path.
	AbsolutePath string

	// IsRoot is true for the routes folder itself.
	IsRoot bool
}

// TransformContext is passed to route transforms.
type TransformContext struct {
	Segments     []string
	RawSegments  []string
	AbsolutePath string
	IsRoot       bool

	// Route is the route being transformed. Its children are already
	// transformed.
	Route *Route

	// Parent is the route the candidate is nested under, or nil at top level.
	Parent *Route
}

// NameResolver derives a route name.
type NameResolver func(ctx NameContext) (string, error)

// TransformFunc rewrites one route. Returning no routes drops the route and
// its subtree, one route replaces it, several routes take its place as
// siblings.
type TransformFunc func(route *Route, ctx TransformContext) ([]*Route, error)

// ExtendFunc replaces the final route list.
type ExtendFunc func(routes []*Route) ([]*Route, error)

// Stats describes one generation.
type Stats struct {
	// Modules is the number of modules inserted into the route tree.
	Modules int

	// Ignored is the number of modules skipped (wrong file name or nil loader).
	Ignored int

	// Routes is the number of routes in the final output, including children.
	Routes int

	// Spilled is the number of non-static routes nested under an ancestor
	// other than their directory parent, or deferred to the top level.
	Spilled int

	// TopLevelSpills is the number of spilled routes that found no static
	// ancestor with a component and became top-level routes.
	TopLevelSpills int
}

// Observer receives generation results, e.g. for metrics.
type Observer interface {
	ObserveGenerate(stats Stats, duration time.Duration, err error)
}

// Options configures route generation.
type Options struct {
	// PathPrefix is removed from discovered paths before they are split into
	// segments. Only the first match is removed.
	// Default: ^/src/views
	PathPrefix *regexp.Regexp

	// IndexFileName is the suffix that marks a routable file. Paths not ending
	// in it are ignored.
	// Default: /page.tsx
	IndexFileName string

	// RouterPathFolder is the folder the routes live in. Informational.
	// Default: /src/views
	RouterPathFolder string

	// RawPathKey is the name under which encoders expose RawPath when it
	// differs from "rawPath".
	// Default: _rawPath
	RawPathKey string

	// ResolveRouteName overrides DefaultRouteName.
	ResolveRouteName NameResolver

	// TransformRoute is applied to every route, children first.
	TransformRoute TransformFunc

	// ExtendRoutes is applied to the transformed route list.
	ExtendRoutes ExtendFunc

	// Logger receives debug output. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Observer is notified after each generation.
	Observer Observer

	// Tracer is used by GenerateContext. If nil, the global tracer provider
	// is used.
	Tracer trace.Tracer
}

// Default option values.
const (
	DefaultPathPrefix       = `^/src/views`
	DefaultIndexFileName    = "/page.tsx"
	DefaultRouterPathFolder = "/src/views"
	DefaultRawPathKey       = "_rawPath"
)

// defaultPathPrefix is compiled once.
var defaultPathPrefix = regexp.MustCompile(DefaultPathPrefix)

// withDefaults returns a copy of o with empty fields filled in.
func (o Options) withDefaults() Options {
	if o.PathPrefix == nil {
		o.PathPrefix = defaultPathPrefix
	}
	if o.IndexFileName == "" {
		o.IndexFileName = DefaultIndexFileName
	}
	if o.RouterPathFolder == "" {
		o.RouterPathFolder = DefaultRouterPathFolder
	}
	if o.RawPathKey == "" {
		o.RawPathKey = DefaultRawPathKey
	}
	if o.ResolveRouteName == nil {
		o.ResolveRouteName = DefaultRouteName
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
