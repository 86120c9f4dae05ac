package stats

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Page(ctx context.Context, props app.Props) *VNode {
	return Section(
		H2(Text("Stats")),
		Ul(
			Li(Text("Visitors: 1,204")),
			Li(Text("Orders: 87")),
		),
	)
}
