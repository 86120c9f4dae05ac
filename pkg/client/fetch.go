package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/protocol"
)

// DefaultEndpoint is the path component streams are served from.
const DefaultEndpoint = "/rsc"

// HTTPFetcher fetches component streams from an mfext server.
type HTTPFetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// BaseURL is prepended to Endpoint. Empty means same origin, which is
	// what the browser build uses.
	BaseURL string

	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
}

// Fetch requests the stream for target and decodes it. Non-200 responses
// and malformed streams are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*protocol.Payload, error) {
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u := f.BaseURL + endpoint + "?path=" + url.QueryEscape(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", protocol.ContentType)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Errorf("fetch component stream for %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("fetch component stream for %s: status %d", target, resp.StatusCode)
	}

	p, err := protocol.ReadTree(resp.Body)
	if err != nil {
		return nil, errors.Errorf("decode component stream for %s: %w", target, err)
	}
	return p, nil
}
