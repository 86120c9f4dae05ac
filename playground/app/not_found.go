package app

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func NotFound(ctx context.Context, props app.Props) *VNode {
	return Section(
		H1(Text("Not found")),
		P(Textf("Nothing lives at %s.", props.Path)),
	)
}
