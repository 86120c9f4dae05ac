package dashboard

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/client"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Layout(ctx context.Context, props app.Props) *VNode {
	return Div(Class("dashboard"),
		Aside(
			Ul(
				Li(client.Link("/dashboard", Text("Overview"))),
				Li(client.Link("/dashboard/stats", Text("Stats"))),
			),
		),
		Div(Class("dashboard-content"), props.Children),
	)
}
