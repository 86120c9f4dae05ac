// Package vtest provides testing helpers for mfext components.
//
// Components are plain functions, so most tests call them directly and
// assert on the rendered HTML:
//
//	func TestPage(t *testing.T) {
//	    node := Page(vtest.NewCtx().Build(), vtest.NewProps("/").Build())
//	    vtest.ExpectContains(t, node, "Welcome")
//	}
//
// # Context Builder
//
// Components that use client navigation read the store from their
// context. The builder installs one at the given path:
//
//	ctx := vtest.NewCtx().WithPath("/dashboard").Build()
//
// # Whole Routes
//
// RenderRoute discovers an app directory, resolves a path and composes the
// layouts and page through the same loader the servers use:
//
//	html := vtest.RenderRoute(t, ".", Components, "/dashboard/stats")
package vtest
