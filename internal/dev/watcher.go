package dev

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeGo ChangeType = iota
	ChangeCSS
	ChangeAsset
	ChangeManifest
)

func (c ChangeType) String() string {
	switch c {
	case ChangeGo:
		return "go"
	case ChangeCSS:
		return "css"
	case ChangeManifest:
		return "manifest"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories (watched recursively) and files to watch.
	Paths []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Debounce is the quiet period after the last event before changes are
	// reported.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	"zz_*_gen.go",
	".git",
	"node_modules",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}

	fsw       *fsnotify.Watcher
	recursive map[string]bool
	files     map[string]bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:    config,
		recursive: make(map[string]bool),
		files:     make(map[string]bool),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called. Events are collected
// until Debounce passes without a new one; the callback then receives the
// first change of each type, in the order the types were first seen.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	for _, p := range w.config.Paths {
		w.add(p)
	}
	w.mu.Unlock()

	defer fsw.Close()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[ChangeType]Change)
		order   []ChangeType
	)

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			change, ok := w.handle(ev)
			if !ok {
				continue
			}
			if _, seen := pending[change.Type]; !seen {
				pending[change.Type] = change
				order = append(order, change.Type)
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Default().Warn("file watcher error", "component", "dev", "error", err)
		case <-fire:
			w.mu.Lock()
			callback := w.onChange
			w.mu.Unlock()
			if callback != nil {
				for _, t := range order {
					callback(pending[t])
				}
			}
			pending = make(map[ChangeType]Change)
			order = nil
			fire = nil
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// add registers p with the watcher. Directories are walked and every
// subdirectory is added; a file is watched through its parent directory, so
// a file that does not exist yet is reported once it is created. Callers
// hold w.mu.
func (w *Watcher) add(p string) {
	p = filepath.Clean(p)
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		w.files[p] = true
		_ = w.fsw.Add(filepath.Dir(p))
		return
	}
	_ = filepath.WalkDir(p, func(dir string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if dir != p && w.shouldIgnore(dir) {
			return filepath.SkipDir
		}
		w.recursive[dir] = true
		_ = w.fsw.Add(dir)
		return nil
	})
}

// handle turns an fsnotify event into a change, following new directories
// inside recursively watched trees.
func (w *Watcher) handle(ev fsnotify.Event) (Change, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return Change{}, false
	}
	if w.shouldIgnore(ev.Name) {
		return Change{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	inTree := w.recursive[filepath.Dir(ev.Name)]
	if ev.Has(fsnotify.Create) && inTree {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.add(ev.Name)
			return Change{}, false
		}
	}
	if !inTree && !w.files[ev.Name] {
		return Change{}, false
	}
	return Change{Path: ev.Name, Type: classifyChange(ev.Name)}, true
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return ChangeGo
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	case ".json":
		return ChangeManifest
	default:
		return ChangeAsset
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
