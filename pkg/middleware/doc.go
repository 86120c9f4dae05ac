// Package middleware provides the HTTP middleware shared by the mfext
// servers.
//
// This package includes:
//   - Request logging with request ids (RequestLogger)
//   - OpenTelemetry tracing (OpenTelemetry, StartSpan)
//   - Prometheus metrics (Metrics)
//
// All middleware has the func(http.Handler) http.Handler shape used by chi:
//
//	m := middleware.NewMetrics()
//	r := chi.NewRouter()
//	r.Use(middleware.RequestLogger("SSR"))
//	r.Use(middleware.OpenTelemetry())
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//
// # Request Logging
//
// RequestLogger attaches the request id to the request context through
// slog-context. Handlers log with slogctx.Info(ctx, ...) or
// slogctx.FromCtx(ctx) and the id is added to the record automatically.
//
// # Tracing
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it in
// main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//
// Render and component loading open child spans with StartSpan.
package middleware
