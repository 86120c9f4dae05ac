// Package router implements directory-based routing for mfext apps.
//
// Routes are defined by special files in the app directory:
//
//	app/
//	├── layout.go          → layout for every route
//	├── page.go            → /
//	├── not_found.go       → 404 content
//	└── dashboard/
//	    ├── layout.go      → layout for /dashboard/...
//	    ├── page.go        → /dashboard
//	    └── stats/
//	        └── page.go    → /dashboard/stats
//
// The reserved base names are page, layout, loading, error and not-found
// (not_found is accepted as the Go spelling). A directory without a page is
// not routable, but its layout still wraps the routes below it.
//
// # Manifest
//
// Discover scans the app directory and returns a Manifest: the route tree
// plus a flattened route table. The manifest is written as JSON at build time
// and read by the servers at startup:
//
//	m, changed, err := router.DiscoverAndWrite(ctx, "app", "dist/app-routes-manifest.json")
//
// # Resolution
//
// A Resolver matches a path exactly, segment by segment. There are no
// dynamic segments and no case folding; trailing slashes are ignored.
//
//	r := router.LoadResolver(ctx, "dist/app-routes-manifest.json")
//	route, ok := r.Resolve("/dashboard/stats")
//	// route.Layouts = ["layout.go", "dashboard/layout.go"]
//	// route.Page    = "dashboard/stats/page.go"
//
// Discovery and resolution compute layout chains with the same walk, so the
// layouts recorded in the manifest always match what Resolve returns.
package router
