package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyori-mfv/mfext/pkg/protocol"
	"github.com/kyori-mfv/mfext/pkg/vdom"
)

func TestHTTPFetcher(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rsc" {
			http.NotFound(w, r)
			return
		}
		gotPath = r.URL.Query().Get("path")
		if gotPath == "/missing" {
			http.Error(w, "Route not found", http.StatusNotFound)
			return
		}
		if gotPath == "/garbage" {
			_, _ = w.Write([]byte("<html>not a stream</html>"))
			return
		}
		w.Header().Set("Content-Type", protocol.ContentType)
		tree := vdom.Div(vdom.Class("page"), vdom.Text(gotPath))
		_ = protocol.NewStreamWriter(w, nil).WriteTree(r.Context(), tree)
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL}

	p, err := f.Fetch(context.Background(), "/stats?tab=1&x=y")
	require.NoError(t, err)
	assert.Equal(t, "/stats?tab=1&x=y", gotPath, "target is query-escaped")
	require.NotNil(t, p.Tree)
	assert.Equal(t, "div", p.Tree.Tag)
	assert.Equal(t, "/stats?tab=1&x=y", p.Tree.Children[0].Text)

	_, err = f.Fetch(context.Background(), "/missing")
	assert.ErrorContains(t, err, "status 404")

	_, err = f.Fetch(context.Background(), "/garbage")
	assert.Error(t, err)
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&HTTPFetcher{BaseURL: url}).Fetch(context.Background(), "/")
	assert.Error(t, err)
}

func TestHTTPFetcherEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rsc", r.URL.Path)
		_ = protocol.NewStreamWriter(w, nil).WriteTree(r.Context(), vdom.P(vdom.Text("ok")))
	}))
	defer srv.Close()

	p, err := (&HTTPFetcher{BaseURL: srv.URL, Endpoint: "/api/rsc", Client: srv.Client()}).Fetch(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "p", p.Tree.Tag)
}
