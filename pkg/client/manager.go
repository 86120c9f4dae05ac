package client

import (
	"context"
	"log/slog"
	"sync/atomic"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/protocol"
)

// ErrNavigationInProgress is returned by Navigate when a push or replace
// arrives while another navigation is in flight. The request is dropped.
var ErrNavigationInProgress = errors.Base("navigation already in progress")

// Fetcher retrieves and decodes the component stream for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*protocol.Payload, error)
}

// History is the browser session history.
type History interface {
	PushState(url string)
	ReplaceState(url string)
	Back()
}

// Location performs full page navigations. They are the fallback when a soft
// navigation fails.
type Location interface {
	Assign(url string)
	Replace(url string)
	Reload()
}

// Document holds the bootstrap payload the server wrote into the page.
type Document interface {
	Bootstrap() (protocol.Bootstrap, error)
	SetBootstrap(b protocol.Bootstrap)
	SetTitle(title string)
}

// Root is where decoded trees are rendered. ctx carries the navigation store.
type Root interface {
	Render(ctx context.Context, p *protocol.Payload) error
}

// Options are the collaborators of a Manager. All fields are required.
type Options struct {
	Store    *Store
	Fetcher  Fetcher
	History  History
	Location Location
	Document Document
	Root     Root

	// Logger defaults to the logger in the context passed to each call.
	Logger *slog.Logger
}

// Manager performs soft navigations for one page session.
//
// At most one push or replace is in flight: a second one arriving meanwhile
// is dropped with a warning. Popstate is always processed because the
// browser has already changed the URL. Either way the manager returns to
// idle once the navigation settles.
type Manager struct {
	opts       Options
	navigating atomic.Bool
}

// NewManager creates a manager. It does nothing until Start or one of the
// navigation methods is called.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// IsNavigating reports whether a navigation is in flight.
func (m *Manager) IsNavigating() bool {
	return m.navigating.Load()
}

// CurrentPath returns the path of the last rendered page, or "/" before the
// first render.
func (m *Manager) CurrentPath() string {
	b, err := m.opts.Document.Bootstrap()
	if err != nil || b.PageInfo.Path == "" {
		return "/"
	}
	return b.PageInfo.Path
}

// Start renders the initial page named by the bootstrap payload and then
// follows store events until ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	b, err := m.opts.Document.Bootstrap()
	if err != nil {
		return errors.Errorf("read bootstrap payload: %w", err)
	}

	unsubscribe := m.opts.Store.Subscribe(func(ev Event) {
		go m.dispatch(ctx, ev)
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	p, err := m.opts.Fetcher.Fetch(ctx, b.PageInfo.Path)
	if err != nil {
		return errors.Errorf("initial render of %s: %w", b.PageInfo.Path, err)
	}
	if err := m.opts.Root.Render(WithStore(ctx, m.opts.Store), p); err != nil {
		return errors.Errorf("initial render of %s: %w", b.PageInfo.Path, err)
	}
	return nil
}

func (m *Manager) dispatch(ctx context.Context, ev Event) {
	if ev.Method == MethodPopState {
		_ = m.HandlePopState(ctx, ev.URL)
		return
	}
	_ = m.Navigate(ctx, ev.URL, ev.Method)
}

// Navigate fetches url, updates history per method and renders the result.
// On failure it falls back to a full navigation and returns the cause.
func (m *Manager) Navigate(ctx context.Context, url string, method Method) error {
	logger := m.logger(ctx)
	if !m.navigating.CompareAndSwap(false, true) {
		logger.Warn("navigation already in progress", "url", url)
		return errors.WithStack(ErrNavigationInProgress)
	}
	defer m.navigating.Store(false)

	err := m.render(ctx, url, func() {
		if method == MethodReplace {
			m.opts.History.ReplaceState(url)
		} else {
			m.opts.History.PushState(url)
		}
	})
	if err != nil {
		logger.Error("navigation failed", "url", url, "method", string(method), "error", err)
		if method == MethodReplace {
			m.opts.Location.Replace(url)
		} else {
			m.opts.Location.Assign(url)
		}
		return err
	}
	logger.Debug("navigation complete", "url", url, "method", string(method))
	return nil
}

// HandlePopState renders url after a back or forward move. History is left
// alone and a failure reloads the page.
func (m *Manager) HandlePopState(ctx context.Context, url string) error {
	logger := m.logger(ctx)
	m.navigating.Store(true)
	defer m.navigating.Store(false)

	if err := m.render(ctx, url, nil); err != nil {
		logger.Error("popstate navigation failed", "url", url, "error", err)
		m.opts.Location.Reload()
		return err
	}
	logger.Debug("popstate navigation complete", "url", url)
	return nil
}

// render fetches url, runs commit, records the page info and renders.
func (m *Manager) render(ctx context.Context, url string, commit func()) error {
	p, err := m.opts.Fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if commit != nil {
		commit()
	}
	m.opts.Document.SetBootstrap(protocol.NewBootstrap(url))
	m.opts.Document.SetTitle(protocol.PageTitle(url))
	return m.opts.Root.Render(WithStore(ctx, m.opts.Store), p)
}

func (m *Manager) logger(ctx context.Context) *slog.Logger {
	if m.opts.Logger != nil {
		return m.opts.Logger
	}
	return slogctx.FromCtx(ctx).With("component", "client")
}
