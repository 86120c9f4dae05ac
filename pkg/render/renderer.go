package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// DefaultClientElement wraps client references in rendered HTML.
const DefaultClientElement = "mfext-client"

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// ClientElement is the tag wrapped around client references.
	// Defaults to DefaultClientElement.
	ClientElement string
}

// Renderer handles server-side rendering of VNode trees to HTML.
// It holds no per-render state and is safe for concurrent use.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.ClientElement == "" {
		config.ClientElement = DefaultClientElement
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(ctx context.Context, node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render expands node and writes its HTML to w. Nothing is written when
// expansion fails.
func (r *Renderer) Render(ctx context.Context, w io.Writer, node *vdom.VNode) error {
	expanded, err := vdom.Expand(ctx, node)
	if err != nil {
		return err
	}
	return r.WriteTree(w, expanded)
}

// WriteTree writes an already expanded tree, e.g. one decoded from a
// component stream.
func (r *Renderer) WriteTree(w io.Writer, node *vdom.VNode) error {
	hw := &htmlWriter{w: w, clientElement: r.config.ClientElement}
	hw.node(node)
	return hw.err
}

// htmlWriter keeps the first write error and turns later writes into
// no-ops.
type htmlWriter struct {
	w             io.Writer
	err           error
	clientElement string
}

func (h *htmlWriter) write(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) node(node *vdom.VNode) {
	if node == nil || h.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindElement:
		h.element(node)
	case vdom.KindText:
		h.write(escapeHTML(node.Text))
	case vdom.KindFragment:
		h.children(node)
	case vdom.KindRaw:
		h.write(node.Text)
	case vdom.KindClient:
		h.client(node)
	case vdom.KindComponent:
		h.err = fmt.Errorf("render: unexpanded component %q", node.Tag)
	default:
		h.err = fmt.Errorf("render: unknown node kind: %d", node.Kind)
	}
}

func (h *htmlWriter) children(node *vdom.VNode) {
	for _, child := range node.Children {
		h.node(child)
	}
}

func (h *htmlWriter) element(node *vdom.VNode) {
	h.write("<" + node.Tag)
	h.attributes(node.Props)
	h.write(">")

	if vdom.IsVoidElement(node.Tag) {
		return
	}

	h.children(node)
	h.write("</" + node.Tag + ">")
}

func (h *htmlWriter) attributes(props vdom.Props) {
	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := vdom.AttrString(props[key])
		if !ok {
			continue
		}
		if value == "" {
			if b, isBool := props[key].(bool); isBool && b {
				h.write(" " + key)
				continue
			}
		}
		h.write(" " + key + `="` + escapeAttr(value) + `"`)
	}
}

// client renders the server fallback inside a wrapper naming the client
// module and carrying its props as JSON.
func (h *htmlWriter) client(node *vdom.VNode) {
	props := "{}"
	if len(node.Props) > 0 {
		data, err := json.Marshal(node.Props)
		if err != nil {
			h.err = fmt.Errorf("render: client props for %q: %w", node.Ref, err)
			return
		}
		props = string(data)
	}

	h.write("<" + h.clientElement)
	h.write(` data-ref="` + escapeAttr(node.Ref) + `"`)
	h.write(` data-props="` + escapeAttr(props) + `">`)
	h.children(node)
	h.write("</" + h.clientElement + ">")
}
