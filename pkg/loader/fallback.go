package loader

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

const fallbackStyle = "border:2px solid #dc2626;background:#fef2f2;color:#991b1b;" +
	"padding:12px 16px;margin:8px 0;border-radius:6px;font-family:monospace"

// Fallback returns the component rendered in place of id when it cannot be
// loaded. A fallback used as a layout still renders its children so one
// broken layout does not blank the page.
func Fallback(id string) app.Component {
	return func(ctx context.Context, props app.Props) *vdom.VNode {
		return vdom.Fragment(
			vdom.Div(
				vdom.Class("mfext-load-error"),
				vdom.Role("alert"),
				vdom.StyleAttr(fallbackStyle),
				vdom.Data("component", id),
				vdom.Strong("Failed to load component: "),
				vdom.Code(id),
			),
			props.Children,
		)
	}
}
