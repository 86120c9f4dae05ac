package vtest

import (
	"context"
	"strings"
	"testing"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/client"
	"github.com/kyori-mfv/mfext/pkg/loader"
	"github.com/kyori-mfv/mfext/pkg/render"
	"github.com/kyori-mfv/mfext/pkg/router"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// CtxBuilder allows fluent construction of test contexts.
type CtxBuilder struct {
	ctx   context.Context
	store *client.Store
}

// NewCtx creates a new context builder for testing.
func NewCtx() *CtxBuilder {
	return &CtxBuilder{ctx: context.Background()}
}

// WithPath installs a navigation store at path.
//
// Example:
//
//	ctx := vtest.NewCtx().WithPath("/dashboard").Build()
func (b *CtxBuilder) WithPath(path string) *CtxBuilder {
	b.store = client.NewStore(path, nil, client.WithSettleDelay(0))
	return b
}

// WithValue adds a context value.
func (b *CtxBuilder) WithValue(key, val any) *CtxBuilder {
	b.ctx = context.WithValue(b.ctx, key, val)
	return b
}

// Store returns the store installed by WithPath, or nil.
func (b *CtxBuilder) Store() *client.Store {
	return b.store
}

// Build returns the final context for use in tests.
func (b *CtxBuilder) Build() context.Context {
	if b.store != nil {
		return client.WithStore(b.ctx, b.store)
	}
	return b.ctx
}

// PropsBuilder builds component props for a path.
type PropsBuilder struct {
	props app.Props
}

// NewProps starts props for path; Segments are derived from it.
func NewProps(path string) *PropsBuilder {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return &PropsBuilder{props: app.Props{Path: path, Segments: segments}}
}

// WithChildren sets the children a layout wraps.
func (b *PropsBuilder) WithChildren(children *vdom.VNode) *PropsBuilder {
	b.props.Children = children
	return b
}

// Build returns the props.
func (b *PropsBuilder) Build() app.Props {
	return b.props
}

// RenderRoute discovers appDir, resolves path and renders the composed
// layouts and page to HTML. The test fails when discovery fails or no
// route matches.
func RenderRoute(t *testing.T, appDir string, importer loader.Importer, path string) string {
	t.Helper()
	ctx := context.Background()

	m, err := router.Discover(ctx, appDir)
	if err != nil {
		t.Fatalf("discover %s: %v", appDir, err)
	}
	route, ok := router.NewResolver(m).Resolve(path)
	if !ok {
		t.Fatalf("no route for %s", path)
	}

	components := loader.New(importer, loader.WithoutFallbacks()).Load(ctx, route)
	tree, err := app.Compose(ctx, route, components, app.Strict())
	if err != nil {
		t.Fatalf("compose %s: %v", path, err)
	}
	return RenderToString(tree)
}

// RenderToString renders a VNode and returns the HTML string, or "" when
// rendering fails.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(context.Background(), node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, Page(ctx, props), "Welcome")
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t *testing.T, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, node, "href", "/dashboard")
func ExpectAttribute(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
