package client

import (
	"strings"

	"github.com/kyori-mfv/mfext/pkg/vdom"
)

// Attributes marking anchors the browser runtime intercepts.
const (
	LinkAttr        = "data-mfext-link"
	LinkReplaceAttr = "data-mfext-replace"
)

// Link renders an anchor to href that navigates softly when clicked. args
// are attributes and children as accepted by vdom.A.
func Link(href string, args ...any) *vdom.VNode {
	return vdom.A(append([]any{vdom.Href(href), vdom.Attribute(LinkAttr, true)}, args...)...)
}

// LinkReplace is Link that replaces the current history entry.
func LinkReplace(href string, args ...any) *vdom.VNode {
	return Link(href, append([]any{vdom.Attribute(LinkReplaceAttr, true)}, args...)...)
}

// Click describes a click on a marked anchor.
type Click struct {
	Href             string
	DefaultPrevented bool
	MetaKey          bool
	CtrlKey          bool
	ShiftKey         bool
	AltKey           bool
}

// Intercept reports whether a click should become a soft navigation. Only
// same-origin absolute paths qualify: hrefs not starting with a single "/"
// (other origins, //host, mailto:, #fragment, relative paths), modified
// clicks and clicks another handler already claimed keep their default
// behaviour.
func Intercept(c Click) bool {
	if c.DefaultPrevented || !strings.HasPrefix(c.Href, "/") || strings.HasPrefix(c.Href, "//") {
		return false
	}
	return !(c.MetaKey || c.CtrlKey || c.ShiftKey || c.AltKey)
}

// Follow applies an intercepted click to s.
func Follow(s *Store, href string, replace bool) {
	if replace {
		s.Replace(href)
		return
	}
	s.Push(href)
}
