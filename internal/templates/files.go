package templates

const goMod = `module [[.ModulePath]]

go [[.GoVersion]]

require [[.FrameworkPath]] [[.FrameworkVersion]]
`

const projectConfig = `{
  "name": "[[.ProjectName]]",
  "paths": {
    "app": "app",
    "public": "public",
    "serverMain": "./cmd/server",
    "clientMain": "./cmd/client"
  },
  "build": {
    "output": "dist"
  },
  "server": {
    "host": "localhost",
    "ssrPort": 5000,
    "rscPort": 5001,
    "rscUrl": "http://localhost:5001"
  }
}
`

const gitignore = `dist/
zz_components_gen.go
`

const readme = `# [[.ProjectName]]

[[.Description]]

    mfext dev          # build, serve on :5000 and reload on change
    mfext build        # production build into dist/
    mfext start        # unified server on :5000
    mfext start rsc    # or the two halves: RSC on :5001 ...
    mfext start ssr    # ... and SSR on :5000
    mfext routes       # list routes
`

const serverMain = `package main

import (
	"[[.FrameworkPath]]/pkg/cli"

	"[[.ModulePath]]/app"
)

func main() {
	cli.Serve(app.Components)
}
`

const clientMain = `//go:build js && wasm

package main

import (
	"context"

	"[[.FrameworkPath]]/pkg/client"
	"[[.FrameworkPath]]/pkg/client/browser"
	"[[.ModulePath]]/app"
)

func main() {
	components := client.NewComponents()
	components.Register("counter", app.MountCounter)
	if err := browser.Run(context.Background(), components); err != nil {
		panic(err)
	}
}
`

const rootLayout = `package app

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	"[[.FrameworkPath]]/pkg/client"
	. "[[.FrameworkPath]]/pkg/vdom"
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
		Footer(Small(Text("[[.ProjectName]]"))),
	)
}
`

const homePage = `package app

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
)

func Page(ctx context.Context, props app.Props) *VNode {
	return Section(
		H1(Text("[[.ProjectName]]")),
		P(Text("[[.Description]]")),
	)
}
`

const notFoundPage = `package app

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
)

func NotFound(ctx context.Context, props app.Props) *VNode {
	return Section(
		H1(Text("Not found")),
		P(Textf("Nothing lives at %s.", props.Path)),
	)
}
`

const counterClient = `package app

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	"[[.FrameworkPath]]/pkg/client"
	. "[[.FrameworkPath]]/pkg/vdom"
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
`

const dashboardLayout = `package dashboard

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	"[[.FrameworkPath]]/pkg/client"
	. "[[.FrameworkPath]]/pkg/vdom"
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
`

const dashboardPage = `package dashboard

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
)

func Page(ctx context.Context, props app.Props) *VNode {
	return Section(
		H2(Text("Dashboard")),
		P(Text("Pick a report from the menu.")),
	)
}
`

const dashboardLoading = `package dashboard

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
)

func Loading(ctx context.Context, props app.Props) *VNode {
	return P(Class("loading"), Text("Loading..."))
}
`

const dashboardError = `package dashboard

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
)

func Error(ctx context.Context, props app.Props) *VNode {
	return Section(Class("error"),
		H2(Text("Something went wrong")),
		P(Textf("The dashboard could not render %s.", props.Path)),
	)
}
`

const statsPage = `package stats

import (
	"context"

	"[[.FrameworkPath]]/pkg/app"
	. "[[.FrameworkPath]]/pkg/vdom"
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
`

const stylesheet = `body {
  font-family: system-ui, sans-serif;
  margin: 0;
}

.shell nav a {
  margin-right: 1rem;
}

.dashboard {
  display: flex;
  gap: 2rem;
}
`
