package dashboard

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Error(ctx context.Context, props app.Props) *VNode {
	return Section(Class("error"),
		H2(Text("Something went wrong")),
		P(Textf("The dashboard could not render %s.", props.Path)),
	)
}
