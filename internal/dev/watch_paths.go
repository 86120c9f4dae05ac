package dev

import (
	"path/filepath"

	"github.com/kyori-mfv/mfext/internal/config"
)

// CollectWatchPaths returns the deduplicated paths the dev loop watches:
// the app and public directories, both main packages, shared pkg and
// internal trees, and the project files.
func CollectWatchPaths(cfg *config.Config) []string {
	root := cfg.Root()
	paths := []string{
		cfg.AppPath(),
		cfg.PublicPath(),
		resolvePath(root, cfg.Paths.ServerMain),
		resolvePath(root, cfg.Paths.ClientMain),
		filepath.Join(root, "pkg"),
		filepath.Join(root, "internal"),
		filepath.Join(root, config.ConfigFileName),
		filepath.Join(root, "go.mod"),
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

func resolvePath(root, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
