package app

import (
	"context"

	"github.com/kyori-mfv/mfext/pkg/app"
	"github.com/kyori-mfv/mfext/pkg/client"
	. "github.com/kyori-mfv/mfext/pkg/vdom"
)

// Counter is rendered by the browser client. The server sends its fallback.
func Counter(ctx context.Context, props app.Props) *VNode {
	return Client("counter", Props{"start": 0}, counterView(0, false))
}

// MountCounter makes the server-rendered counter interactive.
func MountCounter(ctx context.Context, el client.Element, props map[string]any) func() {
	count := 0
	if start, ok := props["start"].(float64); ok {
		count = int(start)
	}
	draw := func() { _ = client.Draw(el, counterView(count, true)) }
	draw()
	return el.On("click", func() {
		count++
		draw()
	})
}

func counterView(count int, hydrated bool) *VNode {
	state := "no"
	if hydrated {
		state = "yes"
	}
	return Div(Class("counter"),
		P(Strong("Count:"), Textf(" %d", count)),
		Button(Type("button"), Text("Increment")),
		P(Textf("Hydrated: %s", state)),
	)
}
