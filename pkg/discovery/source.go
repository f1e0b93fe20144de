package discovery

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// Source discovers route modules.
type Source interface {
	Discover(ctx context.Context) ([]router.Module, error)
}

// FileRef is the loader value for a discovered file.
type FileRef struct {
	// Path is the module path handed to the router (e.g., "/src/views/news/page.tsx").
	Path string `json:"path"`

	// Location is where the file actually lives: an absolute file system path
	// or an s3:// URL.
	Location string `json:"location"`
}

// String returns the module path, which is what generated code imports.
func (f FileRef) String() string {
	return f.Path
}

// Static is a Source backed by a path → loader map.
type Static map[string]router.Loader

// Discover returns the map entries sorted by path.
func (s Static) Discover(ctx context.Context) ([]router.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return router.SortedModules(s), nil
}

// modulePath joins folder and a slash-separated relative path.
func modulePath(folder, rel string) string {
	return path.Join("/", folder, rel)
}

// hasIndexSuffix reports whether rel (relative, slash-separated) ends in the
// index file name, which starts with "/".
func hasIndexSuffix(rel, indexFileName string) bool {
	return strings.HasSuffix("/"+rel, indexFileName)
}

func sortModules(modules []router.Module) {
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Path < modules[j].Path
	})
}
