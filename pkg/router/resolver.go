package router

import (
	"context"

	slogctx "github.com/veqryn/slog-context"
)

// Resolver maps URL paths to routes. It holds an immutable tree and is safe
// for concurrent use.
type Resolver struct {
	tree *Segment
}

// NewResolver creates a resolver over a manifest's tree. A nil manifest
// resolves nothing.
func NewResolver(m *Manifest) *Resolver {
	if m == nil || m.Tree == nil {
		m = EmptyManifest()
	}
	return &Resolver{tree: m.Tree}
}

// LoadResolver reads the manifest at path. A missing, empty or corrupt file
// is logged and gives a resolver with zero routes.
func LoadResolver(ctx context.Context, path string) *Resolver {
	m, err := ReadManifest(path)
	if err != nil {
		slogctx.FromCtx(ctx).Warn("route manifest unavailable, serving no routes",
			"component", "router", "path", path, "error", err)
		return NewResolver(nil)
	}
	return NewResolver(m)
}

// Resolve matches pathname exactly against the tree. The terminal segment
// must define a page.
func (r *Resolver) Resolve(pathname string) (*ResolvedRoute, bool) {
	segments := splitPath(pathname)
	seg := r.tree
	for _, key := range segments {
		child, ok := seg.Children[key]
		if !ok {
			return nil, false
		}
		seg = child
	}
	if seg.Page == "" {
		return nil, false
	}
	return &ResolvedRoute{
		Path:     pathname,
		Segments: segments,
		Page:     seg.Page,
		Layouts:  collectLayouts(r.tree, segments),
	}, true
}

// AvailableRoutes returns every routable path in discovery order.
func (r *Resolver) AvailableRoutes() []string {
	var routes []string
	walk(r.tree, []string{}, func(seg *Segment, _ []string) {
		if seg.Page != "" {
			routes = append(routes, seg.Path)
		}
	})
	return routes
}

// Boundary holds the fallback components that apply to a path.
type Boundary struct {
	// NotFound is the deepest not-found component on the matched prefix
	NotFound string

	// Error is the deepest error component on the matched prefix
	Error string
}

// Boundary returns the not-found and error components that apply to
// pathname, following the longest prefix that exists in the tree.
func (r *Resolver) Boundary(pathname string) Boundary {
	var b Boundary
	seg := r.tree
	visit := func(s *Segment) {
		if s.NotFound != "" {
			b.NotFound = s.NotFound
		}
		if s.Error != "" {
			b.Error = s.Error
		}
	}
	visit(seg)
	for _, key := range splitPath(pathname) {
		child, ok := seg.Children[key]
		if !ok {
			break
		}
		seg = child
		visit(seg)
	}
	return b
}

// Tree returns the route tree. Callers must not modify it.
func (r *Resolver) Tree() *Segment {
	return r.tree
}
