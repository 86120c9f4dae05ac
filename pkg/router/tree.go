package router

import (
	"log/slog"
	"sort"
	"strings"
)

// buildTree assembles scanned files into a route tree. Directories are
// merged shallowest first; missing intermediate segments are created empty.
func buildTree(files []ScannedFile, logger *slog.Logger) *Segment {
	groups := make(map[string][]ScannedFile)
	for _, f := range files {
		groups[f.Dir] = append(groups[f.Dir], f)
	}

	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := len(splitDir(dirs[i])), len(splitDir(dirs[j]))
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})

	root := newSegment("/")
	for _, dir := range dirs {
		seg := root
		for _, key := range splitDir(dir) {
			child, ok := seg.Children[key]
			if !ok {
				child = newSegment(childPath(seg.Path, key))
				seg.Children[key] = child
			}
			seg = child
		}
		for _, f := range groups[dir] {
			assign(seg, f, logger)
		}
	}
	return root
}

func assign(seg *Segment, f ScannedFile, logger *slog.Logger) {
	var slot *string
	switch f.Kind {
	case KindPage:
		slot = &seg.Page
	case KindLayout:
		slot = &seg.Layout
	case KindLoading:
		slot = &seg.Loading
	case KindError:
		slot = &seg.Error
	case KindNotFound:
		slot = &seg.NotFound
	default:
		return
	}
	if *slot != "" {
		logger.Warn("duplicate route file ignored", "segment", seg.Path, "kind", f.Kind, "kept", *slot, "ignored", f.ID)
		return
	}
	*slot = f.ID
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// splitPath turns a URL path into its non-empty components.
func splitPath(pathname string) []string {
	parts := strings.Split(pathname, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func childPath(parent, key string) string {
	if parent == "/" {
		return "/" + key
	}
	return parent + "/" + key
}

// collectLayouts replays the walk from the root along segments and returns
// every layout found, root-most first. Discovery and resolution both use it
// so their layout chains cannot diverge.
func collectLayouts(root *Segment, segments []string) []string {
	layouts := []string{}
	seg := root
	if seg.Layout != "" {
		layouts = append(layouts, seg.Layout)
	}
	for _, key := range segments {
		child, ok := seg.Children[key]
		if !ok {
			break
		}
		seg = child
		if seg.Layout != "" {
			layouts = append(layouts, seg.Layout)
		}
	}
	return layouts
}

// walk visits every segment depth first, children in key order.
func walk(seg *Segment, segments []string, fn func(seg *Segment, segments []string)) {
	fn(seg, segments)
	keys := make([]string, 0, len(seg.Children))
	for key := range seg.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		next := make([]string, len(segments)+1)
		copy(next, segments)
		next[len(segments)] = key
		walk(seg.Children[key], next, fn)
	}
}

// flatten derives the route table from a tree.
func flatten(root *Segment) map[string]*ResolvedRoute {
	routes := map[string]*ResolvedRoute{}
	walk(root, []string{}, func(seg *Segment, segments []string) {
		if seg.Page == "" {
			return
		}
		routes[seg.Path] = &ResolvedRoute{
			Path:     seg.Path,
			Segments: segments,
			Page:     seg.Page,
			Layouts:  collectLayouts(root, segments),
		}
	})
	return routes
}
