package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	offlinecache "github.com/webshim/offline-cache"
)

// HTTPNetwork is an offlinecache.Network that issues requests over an
// http.Client. Relative request URLs, such as the asset paths of a
// precache list, are resolved against BaseURL.
type HTTPNetwork struct {
	// Client is the HTTP client used to reach the origin.
	// If nil, http.DefaultClient is used.
	Client *http.Client

	// BaseURL is the origin that relative request URLs resolve against.
	BaseURL string
}

var _ offlinecache.Network = (*HTTPNetwork)(nil)

// Fetch performs the request against the origin and returns the full
// response. A response is returned for any status code; deciding what a
// usable response is belongs to the caller.
func (n *HTTPNetwork) Fetch(ctx context.Context, req *offlinecache.Request) (*offlinecache.Response, error) {
	target, err := n.resolve(req.URL)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", req.URL, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", req.URL, err)
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = vs
	}

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	httpRes, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", req.URL, err)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %q: %w", req.URL, err)
	}
	return &offlinecache.Response{
		StatusCode: httpRes.StatusCode,
		Header:     httpRes.Header.Clone(),
		Body:       body,
	}, nil
}

func (n *HTTPNetwork) resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || n.BaseURL == "" {
		return target, nil
	}
	base, err := url.Parse(n.BaseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
