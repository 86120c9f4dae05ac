package dashboard

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Loading(ctx context.Context, props app.Props) *VNode {
	return P(Class("loading"), Text("Loading..."))
}
