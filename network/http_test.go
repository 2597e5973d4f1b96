package network_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	offlinecache "github.com/webshim/offline-cache"
	"github.com/webshim/offline-cache/network"
)

func TestFetchResolvesAgainstBaseURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/static/app.js", r.URL.Path)
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte("console.log('hi')"))
	}))
	defer server.Close()

	net := &network.HTTPNetwork{Client: server.Client(), BaseURL: server.URL}
	res, err := net.Fetch(t.Context(), &offlinecache.Request{
		Method: http.MethodGet,
		URL:    "/static/app.js",
		Header: http.Header{"Cache-Control": {"no-cache"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/javascript", res.Header.Get("Content-Type"))
	assert.Equal(t, "console.log('hi')", string(res.Body))
}

func TestFetchKeepsAbsoluteURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	// BaseURL points elsewhere; the absolute URL must win.
	net := &network.HTTPNetwork{Client: server.Client(), BaseURL: "http://unreachable.invalid"}
	res, err := net.Fetch(t.Context(), &offlinecache.Request{Method: http.MethodGet, URL: server.URL + "/x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Body))
}

func TestFetchReturnsNonOKStatuses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	net := &network.HTTPNetwork{Client: server.Client(), BaseURL: server.URL}
	res, err := net.Fetch(t.Context(), &offlinecache.Request{Method: http.MethodGet, URL: "/missing"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFetchFailsWhenOriginIsDown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	net := &network.HTTPNetwork{BaseURL: server.URL}
	_, err := net.Fetch(t.Context(), &offlinecache.Request{Method: http.MethodGet, URL: "/"})
	require.Error(t, err)
}
