package offlinecache_test

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	offlinecache "github.com/webshim/offline-cache"
)

func TestRequestKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      *offlinecache.Request
		expected string
	}{
		{
			name:     "root document",
			req:      &offlinecache.Request{Method: http.MethodGet, URL: "/"},
			expected: "GET /",
		},
		{
			name:     "sub-resource",
			req:      &offlinecache.Request{Method: http.MethodGet, URL: "/static/app.js"},
			expected: "GET /static/app.js",
		},
		{
			name:     "method is part of the identity",
			req:      &offlinecache.Request{Method: http.MethodHead, URL: "/"},
			expected: "HEAD /",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.req.Key(); got != tt.expected {
				t.Errorf("expected key %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRequestIsSafeRead(t *testing.T) {
	t.Parallel()

	safe := map[string]bool{
		http.MethodGet:    true,
		http.MethodHead:   false,
		http.MethodPost:   false,
		http.MethodPut:    false,
		http.MethodDelete: false,
	}
	for method, expected := range safe {
		req := &offlinecache.Request{Method: method, URL: "/"}
		if got := req.IsSafeRead(); got != expected {
			t.Errorf("IsSafeRead for %s: expected %v, got %v", method, expected, got)
		}
	}
}

func TestResponseClone(t *testing.T) {
	t.Parallel()

	original := &offlinecache.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/html"}},
		Body:       []byte("<!doctype html>"),
	}

	clone := original.Clone()
	if clone == original {
		t.Fatal("clone must be a distinct value")
	}
	if df := cmp.Diff(original, clone); df != "" {
		t.Fatalf("clone diff=%s", df)
	}

	clone.Body[0] = 'X'
	clone.Header.Set("Content-Type", "text/plain")
	if string(original.Body) != "<!doctype html>" {
		t.Error("mutating the clone body must not affect the original")
	}
	if original.Header.Get("Content-Type") != "text/html" {
		t.Error("mutating the clone header must not affect the original")
	}
}

func TestResponseCloneNil(t *testing.T) {
	t.Parallel()

	var res *offlinecache.Response
	if res.Clone() != nil {
		t.Error("cloning a nil response must return nil")
	}
}

func TestRequestClone(t *testing.T) {
	t.Parallel()

	original := &offlinecache.Request{
		Method:   http.MethodGet,
		URL:      "/",
		Header:   http.Header{"Accept": {"text/html"}},
		Navigate: true,
	}

	clone := original.Clone()
	if clone == original {
		t.Fatal("clone must be a distinct value")
	}
	if df := cmp.Diff(original, clone); df != "" {
		t.Fatalf("clone diff=%s", df)
	}

	clone.Header.Set("Accept", "*/*")
	if original.Header.Get("Accept") != "text/html" {
		t.Error("mutating the clone header must not affect the original")
	}
}
