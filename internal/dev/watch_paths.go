package dev

import (
	"path/filepath"

	"github.com/vango-dev/fsroutes/internal/config"
)

// CollectWatchPaths returns the paths to poll for a project: the routes
// folder of a local source and the hook script, if any. S3 sources have no
// local routes folder.
func CollectWatchPaths(cfg *config.Config) []string {
	var paths []string
	if cfg.Source.Kind == config.SourceDir {
		paths = append(paths, cfg.RoutesPath())
	}
	if hooks := cfg.HooksPath(); hooks != "" {
		paths = append(paths, hooks)
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}
