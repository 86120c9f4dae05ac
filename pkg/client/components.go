package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/render"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// Element is the node the server rendered for one client reference.
type Element interface {
	SetHTML(html string)
	// On registers fn for event and returns a func that removes it.
	On(event string, fn func()) (remove func())
}

// MountFunc makes a server-rendered client reference interactive. props are
// the decoded data-props of the element. The returned func, if not nil, runs
// before the element is replaced by the next render.
type MountFunc func(ctx context.Context, el Element, props map[string]any) (release func())

// Island is a client reference found in rendered markup.
type Island struct {
	Ref      string
	RawProps string
	El       Element
}

// Surface is the container a page is drawn into.
type Surface interface {
	SetHTML(html string)
	// Islands lists the client references of the current markup in
	// document order.
	Islands() []Island
}

// Components maps client references to their mount funcs and tracks the
// mounts of the page currently shown.
type Components struct {
	mu      sync.Mutex
	mounts  map[string]MountFunc
	release []func()
}

// NewComponents returns an empty registry.
func NewComponents() *Components {
	return &Components{mounts: map[string]MountFunc{}}
}

// Register binds ref to m. A later registration for the same ref wins.
func (c *Components) Register(ref string, m MountFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounts[ref] = m
}

func (c *Components) lookup(ref string) (MountFunc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.mounts[ref]
	return m, ok
}

// Release runs and forgets the release funcs of the current mounts.
func (c *Components) Release() {
	c.mu.Lock()
	release := c.release
	c.release = nil
	c.mu.Unlock()
	for i := len(release) - 1; i >= 0; i-- {
		release[i]()
	}
}

// Hydrate mounts every island that has a registered mount func and returns
// how many were mounted. Islands without one keep their server markup, as do
// islands whose props do not decode. Modules the server announced without a
// registration are logged once per call.
func (c *Components) Hydrate(ctx context.Context, modules []protocol.ClientModule, islands []Island) int {
	logger := slogctx.FromCtx(ctx)
	for _, m := range modules {
		if _, ok := c.lookup(m.ID); !ok {
			logger.Warn("client module has no mount func", "ref", m.ID, "name", m.Name)
		}
	}

	mounted := 0
	for _, is := range islands {
		mount, ok := c.lookup(is.Ref)
		if !ok {
			continue
		}
		props, err := DecodeProps(is.RawProps)
		if err != nil {
			logger.Warn("skipping client reference", "ref", is.Ref, "error", err)
			continue
		}
		release := mount(ctx, is.El, props)
		mounted++
		if release != nil {
			c.mu.Lock()
			c.release = append(c.release, release)
			c.mu.Unlock()
		}
	}
	logger.Debug("hydrated client references", slog.Int("mounted", mounted), slog.Int("found", len(islands)))
	return mounted
}

// DecodeProps decodes a data-props value. Empty input yields empty props.
func DecodeProps(raw string) (map[string]any, error) {
	props := map[string]any{}
	if raw == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, errors.Errorf("decode props: %w", err)
	}
	return props, nil
}

// Draw renders node into el. Client references inside node are written as
// plain markup and are not mounted.
func Draw(el Element, node *vdom.VNode) error {
	var buf bytes.Buffer
	if err := render.NewRenderer(render.RendererConfig{}).WriteTree(&buf, node); err != nil {
		return errors.WithStack(err)
	}
	el.SetHTML(buf.String())
	return nil
}

// HydratingRoot draws payload trees into a Surface and mounts their client
// references.
type HydratingRoot struct {
	surface    Surface
	components *Components
	renderer   *render.Renderer
}

// NewHydratingRoot returns a Root over s. components may be nil, in which
// case pages stay static.
func NewHydratingRoot(s Surface, components *Components) *HydratingRoot {
	if components == nil {
		components = NewComponents()
	}
	return &HydratingRoot{
		surface:    s,
		components: components,
		renderer:   render.NewRenderer(render.RendererConfig{}),
	}
}

// Render releases the mounts of the previous page, replaces the markup and
// mounts the client references of p.
func (r *HydratingRoot) Render(ctx context.Context, p *protocol.Payload) error {
	var buf bytes.Buffer
	if err := r.renderer.WriteTree(&buf, p.Tree); err != nil {
		return errors.WithStack(err)
	}
	r.components.Release()
	r.surface.SetHTML(buf.String())
	r.components.Hydrate(ctx, p.Modules, r.surface.Islands())
	return nil
}
