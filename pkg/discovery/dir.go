package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// DefaultIgnore lists directory names Dir never descends into.
var DefaultIgnore = []string{
	"node_modules",
	".git",
	"dist",
}

// Dir discovers route files in a local directory.
type Dir struct {
	// Root is the directory to scan.
	Root string

	// Folder is the path the router sees Root as.
	// Default: router.DefaultRouterPathFolder
	Folder string

	// IndexFileName selects routable files.
	// Default: router.DefaultIndexFileName
	IndexFileName string

	// Ignore lists directory names to skip. Directories starting with "."
	// are always skipped.
	// Default: DefaultIgnore
	Ignore []string
}

// Discover walks Root and returns one module per index file.
func (d Dir) Discover(ctx context.Context) ([]router.Module, error) {
	folder := d.Folder
	if folder == "" {
		folder = router.DefaultRouterPathFolder
	}
	index := d.IndexFileName
	if index == "" {
		index = router.DefaultIndexFileName
	}
	ignore := d.Ignore
	if ignore == nil {
		ignore = DefaultIgnore
	}

	root, err := filepath.Abs(d.Root)
	if err != nil {
		return nil, err
	}

	var modules []router.Module

	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.IsDir() {
			if p != root && skipDir(entry.Name(), ignore) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !hasIndexSuffix(rel, index) {
			return nil
		}

		modPath := modulePath(folder, rel)
		modules = append(modules, router.Module{
			Path:   modPath,
			Loader: FileRef{Path: modPath, Location: p},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", d.Root, err)
	}

	sortModules(modules)
	return modules, nil
}

func skipDir(name string, ignore []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range ignore {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
