package render

import (
	"context"
	"io"
	"net/http"
)

// StreamingRenderer writes documents straight to a response, flushing the
// head before the body. The SSR handler uses it for every page.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer. If w implements
// http.Flusher, the head is flushed before the body is written.
func NewStreamingRenderer(w io.Writer, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderDocument renders a complete HTML document with incremental
// flushing. Components are expanded before anything is written.
func (s *StreamingRenderer) RenderDocument(ctx context.Context, doc Document) error {
	body, bootstrap, err := s.prepare(ctx, doc)
	if err != nil {
		return err
	}

	hw := &htmlWriter{w: s.w, clientElement: s.config.ClientElement}
	s.writeHead(hw, doc)
	if hw.err != nil {
		return hw.err
	}
	s.flush()

	s.writeBody(hw, doc, body, bootstrap)
	if hw.err != nil {
		return hw.err
	}
	s.flush()
	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
