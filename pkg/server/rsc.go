package server

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/router"
)

const streamAborted = "stream aborted"

// RSCHandler serves component streams at GET <endpoint>?path=<pathname>.
//
// Responses:
//   - 400 "Path parameter is required" when path is missing or empty
//   - 404 "Route not found" when the path does not resolve
//   - 200 text/x-component with the composed tree otherwise
//   - 500 "Internal Server Error" when composing or rendering fails before
//     the first byte is written
//
// A failure after the first byte ends the stream with an error frame
// carrying streamAborted.
type RSCHandler struct {
	engine *Engine
}

// NewRSCHandler creates a component stream handler over engine.
func NewRSCHandler(engine *Engine) *RSCHandler {
	return &RSCHandler{engine: engine}
}

func (h *RSCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pathname := r.URL.Query().Get("path")
	if pathname == "" {
		http.Error(w, "Path parameter is required", http.StatusBadRequest)
		return
	}

	route, ok := h.engine.Resolver().Resolve(pathname)
	if !ok {
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}

	start := time.Now()
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	sw := protocol.NewStreamWriter(ww, h.engine.ClientManifest())
	err := h.render(ww, sw, r, route)
	h.engine.observe("rsc", start, err)
	if err == nil {
		return
	}

	logger := slogctx.FromCtx(ctx)
	logger.Error("RSC component rendering error",
		"component", "server", "path", pathname, "method", r.Method, "error", err)
	if ww.BytesWritten() == 0 {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// The status is already sent; end the stream so readers fail fast.
	if err := sw.WriteError(streamAborted); err != nil {
		logger.Debug("could not terminate component stream", "component", "server", "path", pathname, "error", err)
	}
}

func (h *RSCHandler) render(w http.ResponseWriter, sw *protocol.StreamWriter, r *http.Request, route *router.ResolvedRoute) error {
	tree, err := h.engine.Compose(r.Context(), route)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", protocol.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	return sw.WriteTree(r.Context(), tree)
}
