package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/xid"
	slogctx "github.com/veqryn/slog-context"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs every request twice: "<server> Request Started" with
// method, url, user agent and remote address, and "<server> Request
// Completed" with status and duration. A request id (taken from the
// X-Request-ID header or generated) is attached to the request context, so
// every record logged through slogctx while handling the request carries it.
func RequestLogger(server string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = xid.New().String()
				// Proxied requests carry the id upstream.
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := slogctx.With(r.Context(), "request_id", id, "server", server)
			r = r.WithContext(ctx)

			slogctx.Info(ctx, server+" Request Started",
				"method", r.Method,
				"url", r.URL.RequestURI(),
				"user_agent", r.UserAgent(),
				"remote_addr", r.RemoteAddr,
			)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			slogctx.Info(ctx, server+" Request Completed",
				"method", r.Method,
				"url", r.URL.RequestURI(),
				"status", status(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// status returns the response status, treating an untouched response as 200
// the way net/http does.
func status(ww chimw.WrapResponseWriter) int {
	if code := ww.Status(); code != 0 {
		return code
	}
	return http.StatusOK
}
