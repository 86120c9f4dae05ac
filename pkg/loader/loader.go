// Package loader loads the components of a resolved route through an
// Importer, in parallel and with a per-identifier cache.
package loader

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/router"
)

// Module is an imported component module.
type Module struct {
	Default app.Component
}

// Importer loads the module for a component identifier.
type Importer interface {
	Import(ctx context.Context, id string) (*Module, error)
}

// ImporterFunc adapts a function to Importer.
type ImporterFunc func(ctx context.Context, id string) (*Module, error)

// Import implements Importer.
func (f ImporterFunc) Import(ctx context.Context, id string) (*Module, error) {
	return f(ctx, id)
}

// ErrNoDefault reports a module without a default component.
var ErrNoDefault = errors.Base("module has no default component")

// Cache holds loaded components by identifier. It is safe for concurrent
// use.
type Cache struct {
	mu         sync.RWMutex
	components map[string]app.Component
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{components: make(map[string]app.Component)}
}

// Get returns the cached component for id.
func (c *Cache) Get(id string) (app.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.components[id]
	return comp, ok
}

// Put stores a component.
func (c *Cache) Put(id string, comp app.Component) {
	c.mu.Lock()
	c.components[id] = comp
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.components = make(map[string]app.Component)
	c.mu.Unlock()
}

// Len returns the number of cached components.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.components)
}

// Observer is notified after every import attempt.
type Observer interface {
	ComponentLoaded(id string, cached bool, err error)
}

// Loader loads route components.
type Loader struct {
	importer Importer
	cache    *Cache
	group    singleflight.Group
	observer Observer
	omit     bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache makes the loader use cache instead of a private one.
func WithCache(cache *Cache) Option {
	return func(l *Loader) { l.cache = cache }
}

// WithoutFallbacks leaves identifiers that fail to import out of the
// returned set instead of mapping them to Fallback. Paired with app.Strict,
// a broken layout then fails the render.
func WithoutFallbacks() Option {
	return func(l *Loader) { l.omit = true }
}

// WithObserver registers an observer for import results.
func WithObserver(o Observer) Option {
	return func(l *Loader) { l.observer = o }
}

// New creates a loader over importer.
func New(importer Importer, opts ...Option) *Loader {
	l := &Loader{importer: importer}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache()
	}
	return l
}

// Load imports the layouts and page of route concurrently and returns them
// by identifier. It never fails: an identifier that cannot be imported maps
// to Fallback(id), and the failures are logged together. Fallbacks are not
// cached.
func (l *Loader) Load(ctx context.Context, route *router.ResolvedRoute) app.ComponentSet {
	ids := route.Components()
	loaded := make([]app.Component, len(ids))
	failures := make([]error, len(ids))

	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			comp, err := l.load(ctx, id)
			if err != nil {
				failures[i] = errors.Errorf("%s: %w", id, err)
				comp = Fallback(id)
			}
			loaded[i] = comp
			return nil
		})
	}
	_ = g.Wait()

	set := make(app.ComponentSet, len(ids))
	var merr *multierror.Error
	for i, id := range ids {
		if failures[i] != nil {
			merr = multierror.Append(merr, failures[i])
			if l.omit {
				continue
			}
		}
		set[id] = loaded[i]
	}
	if err := merr.ErrorOrNil(); err != nil {
		slogctx.FromCtx(ctx).Error("component load failed, using fallbacks",
			"component", "loader", "path", route.Path, "failed", len(merr.Errors), "error", err)
	}
	return set
}

func (l *Loader) load(ctx context.Context, id string) (app.Component, error) {
	if comp, ok := l.cache.Get(id); ok {
		l.notify(id, true, nil)
		return comp, nil
	}

	v, err, _ := l.group.Do(id, func() (any, error) {
		if comp, ok := l.cache.Get(id); ok {
			return comp, nil
		}
		mod, err := l.importer.Import(ctx, id)
		if err != nil {
			return nil, err
		}
		if mod == nil || mod.Default == nil {
			return nil, errors.WithStack(ErrNoDefault)
		}
		l.cache.Put(id, mod.Default)
		return mod.Default, nil
	})
	l.notify(id, false, err)
	if err != nil {
		return nil, err
	}
	return v.(app.Component), nil
}

func (l *Loader) notify(id string, cached bool, err error) {
	if l.observer != nil {
		l.observer.ComponentLoaded(id, cached, err)
	}
}

// ClearCache drops every cached component. Meant for tooling and tests.
func (l *Loader) ClearCache() {
	l.cache.Clear()
}
