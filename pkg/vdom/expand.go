package vdom

import (
	"context"
	"fmt"
)

// MaxDepth bounds component nesting during expansion.
const MaxDepth = 256

// RenderError reports a component that panicked or nested too deeply.
type RenderError struct {
	Component string
	Cause     any
}

func (e *RenderError) Error() string {
	name := e.Component
	if name == "" {
		name = "anonymous component"
	}
	return fmt.Sprintf("render %s: %v", name, e.Cause)
}

// Unwrap returns the cause when it is an error.
func (e *RenderError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Expand renders every KindComponent node in the tree and returns a new tree
// containing only host nodes. The input tree is not modified. A component
// returning nil renders nothing.
func Expand(ctx context.Context, node *VNode) (*VNode, error) {
	return expand(ctx, node, 0)
}

func expand(ctx context.Context, node *VNode, depth int) (*VNode, error) {
	if node == nil {
		return nil, nil
	}
	if depth > MaxDepth {
		return nil, &RenderError{Component: node.Tag, Cause: "maximum depth exceeded"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if node.Kind == KindComponent {
		rendered, err := renderComponent(ctx, node)
		if err != nil {
			return nil, err
		}
		return expand(ctx, rendered, depth+1)
	}

	out := *node
	if len(node.Children) > 0 {
		out.Children = make([]*VNode, 0, len(node.Children))
		for _, child := range node.Children {
			c, err := expand(ctx, child, depth+1)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out.Children = append(out.Children, c)
			}
		}
	}
	return &out, nil
}

func renderComponent(ctx context.Context, node *VNode) (out *VNode, err error) {
	if node.Comp == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Component: node.Tag, Cause: r}
		}
	}()
	return node.Comp.Render(ctx), nil
}
