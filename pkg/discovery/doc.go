// Package discovery finds route files and hands them to the router as
// modules.
//
// A Source produces modules sorted by path:
//
//	src := discovery.Dir{Root: "src/views"}
//	modules, err := src.Discover(ctx)
//	if err != nil {
//	    return err
//	}
//	routes, err := router.New(router.Options{}).GenerateModules(modules)
//
// Dir walks a local directory, S3 lists a bucket prefix, Static wraps an
// in-memory map. Loaders produced by Dir and S3 are FileRef values.
package discovery
