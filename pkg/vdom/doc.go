// Package vdom provides the component tree shared by the HTML renderer and
// the component stream codec.
//
// # Core Types
//
// VNode is the building block representing elements, text, fragments, raw
// HTML, server components and client references. Props holds element
// attributes.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Server components
//
// A KindComponent node defers rendering until the tree is serialized. Expand
// runs every component in the tree and returns a tree made only of host
// nodes; both renderers call it so a component renders the same way into
// HTML and into the component stream.
//
// # Client references
//
// Client returns a KindClient node naming a browser-side module. Its props
// must be JSON serializable and its children are the server-rendered
// markup shown until the client module takes over.
package vdom
