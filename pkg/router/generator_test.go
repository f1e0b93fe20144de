package router

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"testing"
)

// pages builds a module map from directories below /src/views. The loader
// of each module is its directory, which keeps failures readable.
func pages(dirs ...string) map[string]Loader {
	modules := make(map[string]Loader, len(dirs))
	for _, dir := range dirs {
		path := "/src/views/page.tsx"
		if dir != "" {
			path = "/src/views/" + dir + "/page.tsx"
		}
		modules[path] = dir
	}
	return modules
}

func mustGenerate(t *testing.T, modules map[string]Loader, opts Options) []*Route {
	t.Helper()
	routes, err := Generate(modules, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return routes
}

// paths lists route paths with children indented by two spaces per level.
func paths(routes []*Route) []string {
	var out []string
	var visit func(rs []*Route, depth int)
	visit = func(rs []*Route, depth int) {
		for _, r := range rs {
			out = append(out, strings.Repeat("  ", depth)+r.Path)
			visit(r.Children, depth+1)
		}
	}
	visit(routes, 0)
	return out
}

func assertPaths(t *testing.T, routes []*Route, want ...string) {
	t.Helper()
	got := paths(routes)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("route tree =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestGenerateNestsDynamicChildUnderStaticParent(t *testing.T) {
	routes := mustGenerate(t, pages("news", "news/[id]"), Options{})

	assertPaths(t, routes,
		"/news",
		"  /news/:id",
	)

	news := routes[0]
	if news.Name != "news" {
		t.Errorf("Name = %q, want news", news.Name)
	}
	child := news.Children[0]
	if got := child.RelativePath(news); got != ":id" {
		t.Errorf("RelativePath = %q, want :id", got)
	}
	if child.Name != "newsId" {
		t.Errorf("child Name = %q, want newsId", child.Name)
	}
	if child.RawPath != "news/[id]" {
		t.Errorf("child RawPath = %q, want news/[id]", child.RawPath)
	}
	if child.Component != "news/[id]" {
		t.Errorf("child Component = %v", child.Component)
	}
}

func TestGenerateDynamicWithoutStaticAncestorIsTopLevel(t *testing.T) {
	routes := mustGenerate(t, pages("news/detail/[id]"), Options{})

	assertPaths(t, routes, "/news/detail/:id")

	r := routes[0]
	if r.Name != "newsDetailId" {
		t.Errorf("Name = %q, want newsDetailId", r.Name)
	}
	if !reflect.DeepEqual(r.Segments, []string{"news", "detail", ":id"}) {
		t.Errorf("Segments = %q", r.Segments)
	}
	if !reflect.DeepEqual(r.RawSegments, []string{"news", "detail", "[id]"}) {
		t.Errorf("RawSegments = %q", r.RawSegments)
	}
}

func TestGenerateSpillsOverComponentlessDirectory(t *testing.T) {
	routes := mustGenerate(t, pages("news", "news/detail/[id]"), Options{})

	assertPaths(t, routes,
		"/news",
		"  /news/detail/:id",
	)

	news := routes[0]
	if got := news.Children[0].RelativePath(news); got != "detail/:id" {
		t.Errorf("RelativePath = %q, want detail/:id", got)
	}
}

func TestGenerateRoot(t *testing.T) {
	routes := mustGenerate(t, pages("", "about"), Options{})

	assertPaths(t, routes,
		"/",
		"  /about",
	)

	root := routes[0]
	if root.Name != RootRouteName {
		t.Errorf("Name = %q, want %q", root.Name, RootRouteName)
	}
	if root.RawPath != "/" {
		t.Errorf("RawPath = %q, want /", root.RawPath)
	}
	if !root.IsRoot() {
		t.Error("IsRoot() = false")
	}
	if len(root.Segments) != 0 || len(root.RawSegments) != 0 {
		t.Errorf("root segments = %q %q", root.Segments, root.RawSegments)
	}
}

func TestGenerateRootClaimsSpilledRoutes(t *testing.T) {
	routes := mustGenerate(t, pages("", "docs/[...slug]", "blog/archive"), Options{})

	// blog has no page, so archive passes through to the root as well
	assertPaths(t, routes,
		"/",
		"  /blog/archive",
		"  /docs/:slug/*",
	)

	docs := routes[0].Children[1]
	if docs.RawPath != "docs/[...slug]" {
		t.Errorf("RawPath = %q", docs.RawPath)
	}
	if docs.Name != "docsSlug" {
		t.Errorf("Name = %q, want docsSlug", docs.Name)
	}
}

func TestGenerateStaticUnderPassThroughWithoutRootIsTopLevel(t *testing.T) {
	routes := mustGenerate(t, pages("a/b", "c"), Options{})

	assertPaths(t, routes,
		"/c",
		"/a/b",
	)
}

func TestGenerateStaticChildOfDynamicRoute(t *testing.T) {
	routes := mustGenerate(t, pages("news", "news/[id]", "news/[id]/edit"), Options{})

	assertPaths(t, routes,
		"/news",
		"  /news/:id",
		"    /news/:id/edit",
	)
}

func TestGenerateDynamicUnderDynamicAttachesToStaticAncestor(t *testing.T) {
	routes := mustGenerate(t, pages("news", "news/[id]", "news/[id]/[tab$]"), Options{})

	// [tab$] cannot nest under the dynamic [id]; it spills to /news and is
	// claimed there before [id], which /news defers itself.
	assertPaths(t, routes,
		"/news",
		"  /news/:id/:tab?",
		"  /news/:id",
	)

	if len(routes[0].Children[1].Children) != 0 {
		t.Error("dynamic route should not own dynamic children")
	}
}

func TestGenerateDirectChildrenBeforeSpilled(t *testing.T) {
	routes := mustGenerate(t, pages("", "[slug]", "zoo", "about"), Options{})

	assertPaths(t, routes,
		"/",
		"  /about",
		"  /zoo",
		"  /:slug",
	)
}

func TestGenerateSiblingsSortedRegardlessOfInputOrder(t *testing.T) {
	dirs := []string{"", "gamma", "alpha", "beta", "alpha/two", "alpha/one", "alpha/three"}

	var modules []Module
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		path := "/src/views/" + dir + "/page.tsx"
		if dir == "" {
			path = "/src/views/page.tsx"
		}
		modules = append(modules, Module{Path: path, Loader: dir})
	}

	routes, err := New(Options{}).GenerateModules(modules)
	if err != nil {
		t.Fatal(err)
	}

	var check func(rs []*Route)
	check = func(rs []*Route) {
		raw := make([]string, len(rs))
		for i, r := range rs {
			raw[i] = r.RawPath
			check(r.Children)
		}
		if !sort.StringsAreSorted(raw) {
			t.Errorf("siblings not sorted: %q", raw)
		}
	}
	check(routes)

	assertPaths(t, routes,
		"/",
		"  /alpha",
		"    /alpha/one",
		"    /alpha/three",
		"    /alpha/two",
		"  /beta",
		"  /gamma",
	)
}

func TestGenerateIgnoresNonIndexFilesAndNilLoaders(t *testing.T) {
	obs := &recordingObserver{}
	routes, err := Generate(map[string]Loader{
		"/src/views/news/page.tsx":       "news",
		"/src/views/news/list.tsx":       "list",
		"/src/views/news/[id]/page.vue":  "vue",
		"/src/views/about/page.tsx":      nil,
		"/src/views/contact/page.tsx.sw": "swap",
	}, Options{Observer: obs})
	if err != nil {
		t.Fatal(err)
	}

	assertPaths(t, routes, "/news")

	if obs.stats.Modules != 1 || obs.stats.Ignored != 4 {
		t.Errorf("stats = %+v, want 1 module and 4 ignored", obs.stats)
	}
}

func TestGenerateDuplicateDirectoryLastWins(t *testing.T) {
	prefix := regexp.MustCompile(`^/src/(views|pages)`)
	modules := []Module{
		{Path: "/src/views/news/page.tsx", Loader: "views"},
		{Path: "/src/pages/news/page.tsx", Loader: "pages"},
	}

	routes, err := New(Options{PathPrefix: prefix}).GenerateModules(modules)
	if err != nil {
		t.Fatal(err)
	}
	assertPaths(t, routes, "/news")
	if routes[0].Component != "pages" {
		t.Errorf("Component = %v, want pages (later module wins)", routes[0].Component)
	}

	// Map input is processed in sorted key order: /src/views sorts last.
	routes, err = Generate(map[string]Loader{
		"/src/views/news/page.tsx": "views",
		"/src/pages/news/page.tsx": "pages",
	}, Options{PathPrefix: prefix})
	if err != nil {
		t.Fatal(err)
	}
	if routes[0].Component != "views" {
		t.Errorf("Component = %v, want views", routes[0].Component)
	}
}

func TestGenerateCustomIndexAndPrefix(t *testing.T) {
	routes := mustGenerate(t, map[string]Loader{
		"/app/pages/index.vue":                "home",
		"/app/pages/users/[userId]/index.vue": "user",
	}, Options{
		PathPrefix:    regexp.MustCompile(`^/app/pages`),
		IndexFileName: "/index.vue",
	})

	assertPaths(t, routes,
		"/",
		"  /users/:userId",
	)
	if got := routes[0].Children[0].Name; got != "usersUserId" {
		t.Errorf("Name = %q, want usersUserId", got)
	}
}

func TestGenerateIsPure(t *testing.T) {
	modules := pages("", "news", "news/[id]", "news/detail/[id$]", "docs/[...slug]", "about")
	g := New(Options{})

	first, err := g.Generate(modules)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Generate(modules)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("generating twice produced different trees")
	}
}

func TestGenerateEmpty(t *testing.T) {
	routes := mustGenerate(t, nil, Options{})
	if len(routes) != 0 {
		t.Errorf("len(routes) = %d, want 0", len(routes))
	}
}

func TestGeneratorSegments(t *testing.T) {
	g := New(Options{})

	tests := []struct {
		path string
		want []string
		ok   bool
	}{
		{"/src/views/page.tsx", nil, true},
		{"/src/views/news/page.tsx", []string{"news"}, true},
		{"/src/views/news/[id]/page.tsx", []string{"news", "[id]"}, true},
		{"/other/news/page.tsx", []string{"other", "news"}, true},
		{"/src/views/news/index.tsx", nil, false},
	}

	for _, tt := range tests {
		got, ok := g.Segments(tt.path)
		if ok != tt.ok {
			t.Errorf("Segments(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Segments(%q) = %q, want %q", tt.path, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Segments(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
			}
		}
	}
}

func TestGeneratorOptionsDefaults(t *testing.T) {
	opts := New(Options{}).Options()

	if opts.PathPrefix.String() != DefaultPathPrefix {
		t.Errorf("PathPrefix = %q", opts.PathPrefix)
	}
	if opts.IndexFileName != DefaultIndexFileName {
		t.Errorf("IndexFileName = %q", opts.IndexFileName)
	}
	if opts.RouterPathFolder != DefaultRouterPathFolder {
		t.Errorf("RouterPathFolder = %q", opts.RouterPathFolder)
	}
	if opts.RawPathKey != DefaultRawPathKey {
		t.Errorf("RawPathKey = %q", opts.RawPathKey)
	}
	if opts.Logger == nil || opts.ResolveRouteName == nil {
		t.Error("Logger and ResolveRouteName should default")
	}
}

func TestCountAndWalk(t *testing.T) {
	routes := mustGenerate(t, pages("", "news", "news/[id]", "about"), Options{})

	if got := Count(routes); got != 4 {
		t.Errorf("Count = %d, want 4", got)
	}

	var parents []string
	routes[0].Walk(func(route, parent *Route) bool {
		if parent == nil {
			parents = append(parents, route.Path+"<-nil")
		} else {
			parents = append(parents, route.Path+"<-"+parent.Path)
		}
		return route.Path != "/news"
	})

	want := []string{"/<-nil", "/about<-/", "/news<-/"}
	if !reflect.DeepEqual(parents, want) {
		t.Errorf("Walk = %q, want %q", parents, want)
	}
}
