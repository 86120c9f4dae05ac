//go:build js && wasm

// Package browser connects the client navigation manager to the DOM.
package browser

import (
	"context"
	"encoding/json"
	"log/slog"
	"syscall/js"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/client"
	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/render"
)

// RootID is the element the page is rendered into.
const RootID = "root"

type history struct{ v js.Value }

func (h history) PushState(url string)    { h.v.Call("pushState", js.Null(), "", url) }
func (h history) ReplaceState(url string) { h.v.Call("replaceState", js.Null(), "", url) }
func (h history) Back()                   { h.v.Call("back") }

type location struct{ v js.Value }

func (l location) Assign(url string)  { l.v.Call("assign", url) }
func (l location) Replace(url string) { l.v.Call("replace", url) }
func (l location) Reload()            { l.v.Call("reload") }

// current returns pathname plus search.
func (l location) current() string {
	return l.v.Get("pathname").String() + l.v.Get("search").String()
}

type document struct {
	window js.Value
	doc    js.Value
}

func (d document) Bootstrap() (protocol.Bootstrap, error) {
	var b protocol.Bootstrap
	v := d.window.Get(protocol.BootstrapVar)
	if v.IsUndefined() || v.IsNull() {
		return b, errors.Errorf("window.%s is not set", protocol.BootstrapVar)
	}
	raw := js.Global().Get("JSON").Call("stringify", v).String()
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return b, errors.Errorf("decode window.%s: %w", protocol.BootstrapVar, err)
	}
	return b, nil
}

func (d document) SetBootstrap(b protocol.Bootstrap) {
	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	d.window.Set(protocol.BootstrapVar, js.Global().Get("JSON").Call("parse", string(raw)))
}

func (d document) SetTitle(title string) {
	d.doc.Set("title", title)
}

// surface is the root element. Client references are found with
// querySelectorAll on the renderer's client tag.
type surface struct{ el js.Value }

func (s surface) SetHTML(h string) { s.el.Set("innerHTML", h) }

func (s surface) Islands() []client.Island {
	nodes := s.el.Call("querySelectorAll", render.DefaultClientElement+"[data-ref]")
	n := nodes.Length()
	out := make([]client.Island, 0, n)
	for i := 0; i < n; i++ {
		el := nodes.Index(i)
		out = append(out, client.Island{
			Ref:      el.Call("getAttribute", "data-ref").String(),
			RawProps: attr(el, "data-props"),
			El:       element{el},
		})
	}
	return out
}

func attr(el js.Value, name string) string {
	v := el.Call("getAttribute", name)
	if v.IsNull() {
		return ""
	}
	return v.String()
}

type element struct{ v js.Value }

func (e element) SetHTML(h string) { e.v.Set("innerHTML", h) }

func (e element) On(event string, fn func()) func() {
	f := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	e.v.Call("addEventListener", event, f)
	return func() {
		e.v.Call("removeEventListener", event, f)
		f.Release()
	}
}

// Run wires the manager to the page and blocks until ctx is done. Clicks on
// links marked by client.Link and the browser's popstate event are the only
// navigation triggers. Client references in every rendered page are mounted
// with components, which may be nil.
func Run(ctx context.Context, components *client.Components) error {
	logger := slog.Default().With("component", "client")
	ctx = slogctx.NewCtx(ctx, logger)

	window := js.Global()
	doc := window.Get("document")
	el := doc.Call("getElementById", RootID)
	if el.IsNull() {
		return errors.Errorf("root element #%s not found", RootID)
	}

	loc := location{window.Get("location")}
	hist := history{window.Get("history")}
	store := client.NewStore(loc.current(), hist)
	manager := client.NewManager(client.Options{
		Store:    store,
		Fetcher:  &client.HTTPFetcher{},
		History:  hist,
		Location: loc,
		Document: document{window: window, doc: doc},
		Root:     client.NewHydratingRoot(surface{el: el}, components),
	})

	onClick := js.FuncOf(func(_ js.Value, args []js.Value) any {
		e := args[0]
		a := e.Get("target").Call("closest", "a["+client.LinkAttr+"]")
		if a.IsNull() {
			return nil
		}
		href := a.Call("getAttribute", "href").String()
		c := client.Click{
			Href:             href,
			DefaultPrevented: e.Get("defaultPrevented").Bool(),
			MetaKey:          e.Get("metaKey").Bool(),
			CtrlKey:          e.Get("ctrlKey").Bool(),
			ShiftKey:         e.Get("shiftKey").Bool(),
			AltKey:           e.Get("altKey").Bool(),
		}
		if !client.Intercept(c) {
			return nil
		}
		e.Call("preventDefault")
		client.Follow(store, href, a.Call("hasAttribute", client.LinkReplaceAttr).Bool())
		return nil
	})
	defer onClick.Release()
	onPopState := js.FuncOf(func(js.Value, []js.Value) any {
		store.HandlePopState(loc.current())
		return nil
	})
	defer onPopState.Release()

	doc.Call("addEventListener", "click", onClick)
	window.Call("addEventListener", "popstate", onPopState)
	defer doc.Call("removeEventListener", "click", onClick)
	defer window.Call("removeEventListener", "popstate", onPopState)

	if err := manager.Start(ctx); err != nil {
		logger.Error("initial render failed", "error", err)
		return err
	}
	<-ctx.Done()
	return nil
}
