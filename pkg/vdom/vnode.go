package vdom

import (
	"context"
	"fmt"
	"strconv"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <a>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Server component, rendered on expansion
	KindRaw                    // Raw HTML (dangerous)
	KindClient                 // Reference to a client module
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	case KindClient:
		return "Client"
	default:
		return "Unknown"
	}
}

// VNode is a node of the component tree.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag, or component name for KindComponent
	Props    Props     // Element attributes, or client props for KindClient
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText and KindRaw
	Ref      string    // Client module id for KindClient
	Comp     Component // For KindComponent
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is anything that renders to a VNode on the server.
type Component interface {
	Render(ctx context.Context) *VNode
}

// ComponentFunc adapts a render function to Component.
type ComponentFunc func(ctx context.Context) *VNode

// Render implements Component.
func (f ComponentFunc) Render(ctx context.Context) *VNode {
	return f(ctx)
}

// Comp wraps a component in a KindComponent node. The name only shows up in
// error messages.
func Comp(name string, c Component) *VNode {
	return &VNode{Kind: KindComponent, Tag: name, Comp: c}
}

// Client creates a reference to the client module ref. Fallback children are
// rendered into the server HTML.
func Client(ref string, props Props, fallback ...any) *VNode {
	node := Fragment(fallback...)
	node.Kind = KindClient
	node.Ref = ref
	node.Props = props
	return node
}

// AttrString converts an attribute value to its wire and HTML form. The
// second result is false when the attribute must be omitted (nil or false).
func AttrString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return "", x
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}
