package app

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

func Page(ctx context.Context, props app.Props) *VNode {
	return Section(
		H1(Text("playground")),
		P(Text("A tour of nested layouts, boundaries and client navigation.")),
	)
}
