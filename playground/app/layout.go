package app

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/client"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Layout(ctx context.Context, props app.Props) *VNode {
	return Div(Class("shell"),
		Header(
			Nav(
				client.Link("/", Text("Home")),
				client.Link("/dashboard", Text("Dashboard")),
			),
		),
		Main(props.Children),
		Footer(Small(Text("playground"))),
	)
}
