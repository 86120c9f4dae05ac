package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attribute creates an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

func Role(role string) Attr         { return attr("role", role) }
func AriaLabel(label string) Attr   { return attr("aria-label", label) }
func AriaCurrent(value string) Attr { return attr("aria-current", value) }
func TitleAttr(title string) Attr   { return attr("title", title) }
func Lang(lang string) Attr         { return attr("lang", lang) }
func Href(url string) Attr          { return attr("href", url) }
func Target(target string) Attr     { return attr("target", target) }
func Rel(rel string) Attr           { return attr("rel", rel) }
func Src(url string) Attr           { return attr("src", url) }
func Alt(text string) Attr          { return attr("alt", text) }
func Name(name string) Attr         { return attr("name", name) }
func Content(content string) Attr   { return attr("content", content) }
func Charset(charset string) Attr   { return attr("charset", charset) }
func Type(t string) Attr            { return attr("type", t) }
func Value(value string) Attr       { return attr("value", value) }
func Disabled() Attr                { return attr("disabled", true) }
func Defer() Attr                   { return attr("defer", true) }
func Hidden() Attr                  { return attr("hidden", true) }
