// Package router compiles discovered route files into a nested route tree for
// a client-side router.
//
// The router provides:
//   - Segment classification (static, [id], [id$], [...slug])
//   - An intermediate directory tree built from file paths
//   - Spillover: dynamic routes nest under the nearest static ancestor that
//     has a page, skipping directories without one
//   - Deterministic path and name synthesis
//   - Per-route transform and whole-list extension hooks
//
// It does not match URLs or load components. Loaders are carried through
// untouched.
//
// # File Structure Convention
//
// With the default options, page files live under /src/views:
//
//	src/views/
//	├── page.tsx                 → / (root)
//	├── news/
//	│   ├── page.tsx             → /news
//	│   ├── [id]/page.tsx        → /news/:id (child of /news)
//	│   └── detail/
//	│       └── [id$]/page.tsx   → /news/detail/:id? (child of /news)
//	└── docs/
//	    └── [...slug]/page.tsx   → /docs/:slug/* (child of /: docs has no page)
//
// Children are ordered by directory name. Spilled routes follow the routes
// nested directly, in the order they were found.
//
// # Usage
//
//	routes, err := router.Generate(map[string]router.Loader{
//	    "/src/views/page.tsx":           loadHome,
//	    "/src/views/news/page.tsx":      loadNews,
//	    "/src/views/news/[id]/page.tsx": loadArticle,
//	}, router.Options{})
//	if err != nil {
//	    return err
//	}
//
//	for _, r := range routes {
//	    fmt.Println(r.Path, r.Name)
//	}
package router
