// Package dev runs the mfext development loop.
//
// The dev server listens where the app normally would, builds the project,
// and runs the server binary in unified mode on a private port behind a
// reverse proxy. HTML passing through the proxy gets the reload script.
//
//   - Watcher reports source changes through fsnotify
//   - Process runs the server binary in its own process group
//   - ReloadServer tells browsers to reload over a websocket
//
// A change to Go code, the config or go.mod reruns the whole build and
// restarts the binary. A change under the public directory only reruns the
// client step; a lone stylesheet is swapped in place.
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Reload protocol
//
// Browsers connect to /__mfext/reload. Messages are JSON:
//
//	{"type": "reload"}
//	{"type": "css", "file": "/static/app.css"}
//	{"type": "error", "error": "..."}
//	{"type": "clear"}
package dev
