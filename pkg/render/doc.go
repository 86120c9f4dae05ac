// Package render converts component trees into HTML.
//
// The renderer expands server components (vdom.Expand) before writing a
// single byte, so a failing component surfaces as an error while the
// response can still be turned into an error page. It handles:
//
//   - Text and attribute escaping
//   - Void elements (input, br, img, etc.)
//   - Deterministic attribute order
//   - Client references rendered as <mfext-client> wrappers around their
//     server fallback
//   - Full documents with inline bootstrap state and the client bundle
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(ctx, node)
//
// # Documents
//
//	doc := render.Document{
//	    Title:        "MFExt App Router - /dashboard",
//	    Body:         tree,
//	    RootID:       "root",
//	    BootstrapVar: "__RSC_PATH__",
//	    Bootstrap:    payload,
//	    Scripts:      []render.ScriptTag{{Src: "/static/client.js", Module: true}},
//	}
//	err := renderer.RenderDocument(ctx, w, doc)
//
// # Streaming
//
// StreamingRenderer flushes the head and the body separately when the
// writer supports http.Flusher.
package render
