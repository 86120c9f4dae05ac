// Package app defines the component model of an mfext application and
// composes a resolved route into a single renderable tree.
package app

import (
	"context"
	"errors"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/pkg/router"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// Props are passed to every page and layout.
type Props struct {
	// Path is the requested URL path
	Path string

	// Segments are the non-empty components of Path
	Segments []string

	// Children is the content a layout wraps. Nil for pages.
	Children *vdom.VNode
}

// Component renders a page or layout. It runs on the server only.
type Component func(ctx context.Context, props Props) *vdom.VNode

// ComponentSet maps component identifiers to loaded components.
type ComponentSet map[string]Component

// ErrMissingLayout is returned by Compose in strict mode when a layout of the
// route has no component.
var ErrMissingLayout = errors.New("app: missing layout component")

type composeOptions struct {
	strict bool
}

// Option configures Compose.
type Option func(*composeOptions)

// Strict makes a missing layout an error instead of skipping it.
func Strict() Option {
	return func(o *composeOptions) { o.strict = true }
}

// Compose nests the page of route inside its layouts. Layouts[0] ends up
// outermost and the last layout wraps the page directly.
//
// A page without a component renders PageNotFound. A layout without a
// component is skipped and logged, or fails with ErrMissingLayout when Strict
// is given. Components are not invoked here: the result holds component nodes
// that render when the tree is expanded.
func Compose(ctx context.Context, route *router.ResolvedRoute, components ComponentSet, opts ...Option) (*vdom.VNode, error) {
	var o composeOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := Props{Path: route.Path, Segments: route.Segments}

	var result *vdom.VNode
	if page, ok := components[route.Page]; ok && page != nil {
		result = Node(route.Page, page, base)
	} else {
		result = PageNotFound(route.Page)
	}

	for i := len(route.Layouts) - 1; i >= 0; i-- {
		id := route.Layouts[i]
		layout, ok := components[id]
		if !ok || layout == nil {
			if o.strict {
				return nil, fmt.Errorf("%w: %s", ErrMissingLayout, id)
			}
			slogctx.FromCtx(ctx).Warn("layout component missing, skipped",
				"component", "app", "layout", id, "path", route.Path)
			continue
		}
		props := base
		props.Children = result
		result = Node(id, layout, props)
	}
	return result, nil
}

// Node wraps a component and its props in a lazily rendered tree node named
// after id.
func Node(id string, c Component, props Props) *vdom.VNode {
	return vdom.Comp(id, vdom.ComponentFunc(func(ctx context.Context) *vdom.VNode {
		return c(ctx, props)
	}))
}

// PageNotFound is the placeholder rendered when a route's page component is
// unavailable.
func PageNotFound(id string) *vdom.VNode {
	return vdom.Div(
		vdom.Class("mfext-page-not-found"),
		vdom.Data("component", id),
		vdom.H1("Page not found"),
		vdom.P(vdom.Textf("No component is registered for %s.", id)),
	)
}
