// Package server serves an mfext application over HTTP.
//
// A process runs in one of three modes:
//
//   - rsc: component streams at GET /rsc?path=<pathname>
//   - ssr: HTML documents for every other GET, with /rsc forwarded to a
//     separate RSC process
//   - both: documents and component streams from a single process
//
// In every mode the server also answers /health and, unless disabled,
// /metrics, and serves the built client assets under /static.
//
// # Rendering
//
// An Engine owns the route resolver, the component loader and the client
// manifest. RSCHandler and SSRHandler share one Engine, so in unified mode
// the stream served at /rsc is byte-for-byte the stream an RSC process would
// send through the proxy.
//
//	srv, err := server.New(ctx, &server.Config{
//	    Mode:     server.ModeUnified,
//	    Port:     5000,
//	    Importer: registry,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
//
// # Live reload
//
// With Config.Watch set, the server watches the manifests and static
// directory. Manifest changes are applied without a restart and connected
// browsers reload over a websocket at /__mfext/reload.
package server
