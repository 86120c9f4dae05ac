package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/pkg/middleware"
)

// NewRSCProxy forwards component stream requests to the RSC server at
// upstream. The upstream status, headers and body pass through unmodified
// and every chunk is flushed as soon as it arrives. When the upstream cannot
// be reached the client gets 500 "RSC server unavailable".
func NewRSCProxy(upstream *url.URL, metrics *middleware.Metrics) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
		},
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slogctx.FromCtx(r.Context()).Error("RSC proxy error",
				"component", "server",
				"rsc_server_url", upstream.String(),
				"original_url", r.URL.RequestURI(),
				"error", err,
			)
			if metrics != nil {
				metrics.ProxyError()
			}
			http.Error(w, "RSC server unavailable", http.StatusInternalServerError)
		},
	}
}
