package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// Document contains everything needed to render a complete HTML page.
type Document struct {
	// Title is the page title.
	Title string

	// Lang is the language attribute of the html element. Defaults to "en".
	Lang string

	// Body is the page content.
	Body *vdom.VNode

	// RootID wraps Body in <div id="RootID"> when set. The client renders
	// soft navigations into this container.
	RootID string

	// BootstrapVar names the window global the bootstrap payload is
	// assigned to. The script is omitted when empty.
	BootstrapVar string

	// Bootstrap is serialized as JSON into the inline bootstrap script.
	Bootstrap any

	// Scripts are appended to the end of the body.
	Scripts []ScriptTag

	// StyleSheets are linked from the head.
	StyleSheets []string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
}

// RenderDocument expands the document body and writes the full HTML page.
// Nothing is written when the body fails to render.
func (r *Renderer) RenderDocument(ctx context.Context, w io.Writer, doc Document) error {
	body, bootstrap, err := r.prepare(ctx, doc)
	if err != nil {
		return err
	}

	hw := &htmlWriter{w: w, clientElement: r.config.ClientElement}
	r.writeHead(hw, doc)
	r.writeBody(hw, doc, body, bootstrap)
	return hw.err
}

// prepare runs everything that can fail for reasons other than I/O.
func (r *Renderer) prepare(ctx context.Context, doc Document) (*vdom.VNode, string, error) {
	body, err := vdom.Expand(ctx, doc.Body)
	if err != nil {
		return nil, "", err
	}

	var bootstrap string
	if doc.BootstrapVar != "" {
		data, err := json.Marshal(doc.Bootstrap)
		if err != nil {
			return nil, "", fmt.Errorf("render: bootstrap payload: %w", err)
		}
		bootstrap = string(data)
	}
	return body, bootstrap, nil
}

func (r *Renderer) writeHead(hw *htmlWriter, doc Document) {
	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}

	hw.write("<!DOCTYPE html>\n")
	hw.write(`<html lang="` + escapeAttr(lang) + `">` + "\n")
	hw.write("<head>\n")
	hw.write(`<meta charset="utf-8">` + "\n")
	hw.write(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if doc.Title != "" {
		hw.write("<title>" + escapeHTML(doc.Title) + "</title>\n")
	}
	for _, href := range doc.StyleSheets {
		hw.write(`<link rel="stylesheet" href="` + escapeAttr(href) + `">` + "\n")
	}
	hw.write("</head>\n")
}

func (r *Renderer) writeBody(hw *htmlWriter, doc Document, body *vdom.VNode, bootstrap string) {
	hw.write("<body>\n")
	if doc.RootID != "" {
		hw.write(`<div id="` + escapeAttr(doc.RootID) + `">`)
		hw.node(body)
		hw.write("</div>\n")
	} else {
		hw.node(body)
		hw.write("\n")
	}

	// json.Marshal escapes <, > and &, so the payload cannot close the
	// script element.
	if doc.BootstrapVar != "" {
		hw.write("<script>window." + doc.BootstrapVar + " = " + bootstrap + ";</script>\n")
	}
	for _, s := range doc.Scripts {
		writeScript(hw, s)
	}
	hw.write("</body>\n</html>\n")
}

func writeScript(hw *htmlWriter, s ScriptTag) {
	hw.write(`<script src="` + escapeAttr(s.Src) + `"`)
	if s.Module {
		hw.write(` type="module"`)
	}
	if s.Defer {
		hw.write(" defer")
	}
	hw.write("></script>\n")
}

// ErrorDocument returns the standalone page served for 404 and 500
// responses. The message is rendered as escaped text unless content is
// non-nil, in which case content replaces it.
func ErrorDocument(status int, title, message string, content *vdom.VNode) Document {
	heading := fmt.Sprintf("%d - %s", status, title)
	if content == nil {
		content = vdom.P(message)
	}
	return Document{
		Title: heading,
		Body: vdom.Fragment(
			vdom.H1(heading),
			content,
			vdom.A(vdom.Href("/"), "Go Home"),
		),
	}
}
