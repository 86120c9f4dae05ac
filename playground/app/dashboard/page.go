package dashboard

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Page(ctx context.Context, props app.Props) *VNode {
	return Section(
		H2(Text("Dashboard")),
		P(Text("Pick a report from the menu.")),
	)
}
