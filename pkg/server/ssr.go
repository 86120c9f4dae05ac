package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/render"
)

const (
	// RootID is the id of the container the client renders into.
	RootID = "root"

	notFoundTitle    = "Page Not Found"
	serverErrorTitle = "Internal Server Error"
	serverErrorText  = "An error occurred while rendering the page."
)

// SSRHandler renders full HTML documents for GET requests.
//
// A path that does not resolve gets a 404 document; a render failure gets a
// 500 document. Both are standalone pages without layouts. When the tree
// defines a not-found or error component for the path, it replaces the
// default message. Error details never reach the response.
type SSRHandler struct {
	engine   *Engine
	renderer *render.Renderer
	scripts  []render.ScriptTag
}

// NewSSRHandler creates a document handler over engine. The client entry is
// loaded from cfg.StaticPrefix/cfg.ClientScript; extra scripts are appended
// after it.
func NewSSRHandler(engine *Engine, cfg *Config, extra ...render.ScriptTag) *SSRHandler {
	scripts := []render.ScriptTag{{
		Src:    path.Join(cfg.StaticPrefix, cfg.ClientScript),
		Module: true,
	}}
	return &SSRHandler{
		engine:   engine,
		renderer: render.NewRenderer(render.RendererConfig{}),
		scripts:  append(scripts, extra...),
	}
}

func (h *SSRHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pathname := r.URL.Path

	route, ok := h.engine.Resolver().Resolve(pathname)
	if !ok {
		slogctx.FromCtx(ctx).Warn("App Router page not found", "component", "server", "path", pathname)
		h.notFound(ctx, w, pathname)
		return
	}

	start := time.Now()
	tree, err := h.engine.Compose(ctx, route)
	if err == nil {
		err = h.stream(ctx, w, render.Document{
			Title:        protocol.PageTitle(pathname),
			Body:         tree,
			RootID:       RootID,
			BootstrapVar: protocol.BootstrapVar,
			Bootstrap:    protocol.NewBootstrap(pathname),
			Scripts:      h.scripts,
		})
	}
	h.engine.observe("ssr", start, err)
	if err != nil {
		slogctx.FromCtx(ctx).Error("SSR rendering error",
			"component", "server", "path", pathname, "method", r.Method, "error", err)
		if !errors.Is(err, errStreamStarted) {
			h.serverError(ctx, w, pathname)
		}
	}
}

// errStreamStarted marks a failure after the status line was sent.
var errStreamStarted = errors.Base("document partially written")

// stream writes doc to w, flushing the head before the body. Components are
// expanded before the first byte, so a render failure still leaves room for
// a 500 page.
func (h *SSRHandler) stream(ctx context.Context, w http.ResponseWriter, doc render.Document) error {
	ww := chimw.NewWrapResponseWriter(w, 1)
	ww.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := render.NewStreamingRenderer(ww, render.RendererConfig{}).RenderDocument(ctx, doc)
	if err != nil && ww.BytesWritten() > 0 {
		return fmt.Errorf("%w: %v", errStreamStarted, err)
	}
	return err
}

func (h *SSRHandler) notFound(ctx context.Context, w http.ResponseWriter, pathname string) {
	b := h.engine.Resolver().Boundary(pathname)
	message := fmt.Sprintf(`The page "%s" does not exist.`, pathname)
	html := h.errorPage(ctx, http.StatusNotFound, notFoundTitle, message, b.NotFound, pathname)
	writeHTML(w, http.StatusNotFound, html)
}

func (h *SSRHandler) serverError(ctx context.Context, w http.ResponseWriter, pathname string) {
	b := h.engine.Resolver().Boundary(pathname)
	html := h.errorPage(ctx, http.StatusInternalServerError, serverErrorTitle, serverErrorText, b.Error, pathname)
	writeHTML(w, http.StatusInternalServerError, html)
}

// errorPage renders a status document, using the boundary component when one
// applies and it renders, and the plain message otherwise.
func (h *SSRHandler) errorPage(ctx context.Context, status int, title, message, boundary, pathname string) []byte {
	if content := h.engine.BoundaryNode(ctx, boundary, pathname); content != nil {
		var buf bytes.Buffer
		err := h.renderer.RenderDocument(ctx, &buf, render.ErrorDocument(status, title, message, content))
		if err == nil {
			return buf.Bytes()
		}
		slogctx.FromCtx(ctx).Error("boundary component failed, using default page",
			"component", "server", "boundary", boundary, "status", status, "error", err)
	}

	var buf bytes.Buffer
	// The default page has no components and cannot fail to expand.
	_ = h.renderer.RenderDocument(ctx, &buf, render.ErrorDocument(status, title, message, nil))
	return buf.Bytes()
}

func writeHTML(w http.ResponseWriter, status int, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(html)
}
