package server

import (
	"context"
	"sync/atomic"
	"time"

	slogctx "github.com/veqryn/slog-context"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/loader"
	"github.com/kyori-mfv/mfext/pkg/middleware"
	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/router"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// Engine resolves paths and composes component trees. It is shared by the
// RSC and SSR handlers of a process and is safe for concurrent use.
//
// The route manifest and client manifest are read once at construction;
// Reload swaps in fresh copies without interrupting requests in flight.
type Engine struct {
	manifestPath       string
	clientManifestPath string
	strict             bool

	resolver       atomic.Pointer[router.Resolver]
	clientManifest atomic.Pointer[protocol.ClientManifest]
	loader         *loader.Loader
	metrics        *middleware.Metrics
}

// NewEngine creates an engine from cfg and loads both manifests. Missing
// manifests are logged and give zero routes and an empty client manifest.
func NewEngine(ctx context.Context, cfg *Config, metrics *middleware.Metrics) *Engine {
	importer := cfg.Importer
	if importer == nil {
		importer = loader.NewRegistry()
	}
	var opts []loader.Option
	if metrics != nil {
		opts = append(opts, loader.WithObserver(metrics))
	}
	if cfg.StrictLayouts {
		opts = append(opts, loader.WithoutFallbacks())
	}

	e := &Engine{
		manifestPath:       cfg.ManifestPath,
		clientManifestPath: cfg.ClientManifestPath,
		strict:             cfg.StrictLayouts,
		loader:             loader.New(importer, opts...),
		metrics:            metrics,
	}
	e.Reload(ctx)
	return e
}

// Reload rereads both manifests and drops cached components.
func (e *Engine) Reload(ctx context.Context) {
	e.resolver.Store(router.LoadResolver(ctx, e.manifestPath))

	cm, err := protocol.LoadClientManifest(e.clientManifestPath)
	if err != nil {
		slogctx.FromCtx(ctx).Warn("client manifest unavailable, client references resolve to themselves",
			"component", "server", "path", e.clientManifestPath, "error", err)
	}
	e.clientManifest.Store(&cm)
	e.loader.ClearCache()
}

// Resolver returns the current route resolver.
func (e *Engine) Resolver() *router.Resolver {
	return e.resolver.Load()
}

// ClientManifest returns the current client manifest.
func (e *Engine) ClientManifest() protocol.ClientManifest {
	return *e.clientManifest.Load()
}

// Compose loads the components of route and nests them.
func (e *Engine) Compose(ctx context.Context, route *router.ResolvedRoute) (*vdom.VNode, error) {
	ctx, span := middleware.StartSpan(ctx, "mfext.compose",
		attribute.String("mfext.path", route.Path),
		attribute.String("mfext.page", route.Page),
		attribute.Int("mfext.layouts", len(route.Layouts)),
	)
	components := e.loader.Load(ctx, route)

	var opts []app.Option
	if e.strict {
		opts = append(opts, app.Strict())
	}
	tree, err := app.Compose(ctx, route, components, opts...)
	middleware.EndSpan(span, err)
	return tree, err
}

// BoundaryNode returns the node rendered for a boundary component id with
// only the path in its props, or nil when id is empty or its component
// could not be loaded.
func (e *Engine) BoundaryNode(ctx context.Context, id, pathname string) *vdom.VNode {
	if id == "" {
		return nil
	}
	route := &router.ResolvedRoute{Path: pathname, Page: id}
	c := e.loader.Load(ctx, route)[id]
	if c == nil {
		return nil
	}
	return app.Node(id, c, app.Props{Path: pathname})
}

// observe records a render outcome when metrics are enabled.
func (e *Engine) observe(kind string, start time.Time, err error) {
	if e.metrics != nil {
		e.metrics.ObserveRender(kind, time.Since(start), err)
	}
}
