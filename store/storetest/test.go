// Package storetest provides generic test cases for cache registry implementations.
package storetest

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	offlinecache "github.com/webshim/offline-cache"
	"golang.org/x/sync/errgroup"
)

// TestRegistry runs the conformance suite against a registry provider.
// The provider returns a fresh, empty registry and a release function.
func TestRegistry(t *testing.T, provider func() (offlinecache.CacheRegistry, func())) {
	t.Run("PutAndMatch", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}

		req := &offlinecache.Request{Method: http.MethodGet, URL: "/static/app.js"}
		res := &offlinecache.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/javascript"}},
			Body:       []byte("console.log('hi')"),
		}
		if err := cache.Put(t.Context(), req, res); err != nil {
			t.Fatal(err)
		}

		got, err := cache.Match(t.Context(), req)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Fatal("expected a match")
		}
		if df := cmp.Diff(res, got); df != "" {
			t.Errorf("response diff=%s", df)
		}
	})

	t.Run("MatchMiss", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}

		got, err := cache.Match(t.Context(), &offlinecache.Request{Method: http.MethodGet, URL: "/missing"})
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("expected nil response for a miss, got %+v", got)
		}
	})

	t.Run("MatchIsExactByMethodAndURL", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}

		req := &offlinecache.Request{Method: http.MethodGet, URL: "/"}
		if err := cache.Put(t.Context(), req, &offlinecache.Response{StatusCode: http.StatusOK, Body: []byte("root")}); err != nil {
			t.Fatal(err)
		}

		for _, other := range []*offlinecache.Request{
			{Method: http.MethodHead, URL: "/"},
			{Method: http.MethodGet, URL: "/index.html"},
		} {
			got, err := cache.Match(t.Context(), other)
			if err != nil {
				t.Fatal(err)
			}
			if got != nil {
				t.Errorf("request %s %s must not match the stored entry", other.Method, other.URL)
			}
		}
	})

	t.Run("CloneOnMatch", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}

		req := &offlinecache.Request{Method: http.MethodGet, URL: "/"}
		res := &offlinecache.Response{StatusCode: http.StatusOK, Body: []byte("original")}
		if err := cache.Put(t.Context(), req, res); err != nil {
			t.Fatal(err)
		}

		// Mutating the stored input and a matched copy must not leak
		// into later matches.
		res.Body[0] = 'X'
		first, err := cache.Match(t.Context(), req)
		if err != nil {
			t.Fatal(err)
		}
		first.Body[0] = 'Y'

		second, err := cache.Match(t.Context(), req)
		if err != nil {
			t.Fatal(err)
		}
		if string(second.Body) != "original" {
			t.Errorf("stored response must be isolated from callers, got body %q", second.Body)
		}
	})

	t.Run("OpenIsIdempotent", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		first, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		req := &offlinecache.Request{Method: http.MethodGet, URL: "/"}
		if err := first.Put(t.Context(), req, &offlinecache.Response{StatusCode: http.StatusOK, Body: []byte("root")}); err != nil {
			t.Fatal(err)
		}

		second, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		got, err := second.Match(t.Context(), req)
		if err != nil {
			t.Fatal(err)
		}
		if got == nil {
			t.Fatal("reopened store must see entries written through the first handle")
		}
	})

	t.Run("KeysAndDelete", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		for _, name := range []string{"v1", "v2", "v3"} {
			if _, err := registry.Open(t.Context(), name); err != nil {
				t.Fatal(err)
			}
		}

		names, err := registry.Keys(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		sort.Strings(names)
		if df := cmp.Diff([]string{"v1", "v2", "v3"}, names); df != "" {
			t.Errorf("names diff=%s", df)
		}

		ok, err := registry.Delete(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Error("deleting an existing store must report true")
		}

		ok, err = registry.Delete(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("deleting an absent store must report false")
		}

		names, err = registry.Keys(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		sort.Strings(names)
		if df := cmp.Diff([]string{"v2", "v3"}, names); df != "" {
			t.Errorf("names diff=%s", df)
		}
	})

	t.Run("DeleteDropsEntries", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		req := &offlinecache.Request{Method: http.MethodGet, URL: "/"}
		if err := cache.Put(t.Context(), req, &offlinecache.Response{StatusCode: http.StatusOK, Body: []byte("root")}); err != nil {
			t.Fatal(err)
		}

		if _, err := registry.Delete(t.Context(), "v1"); err != nil {
			t.Fatal(err)
		}

		reopened, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}
		got, err := reopened.Match(t.Context(), req)
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Error("a recreated store must not retain entries of the deleted one")
		}
	})

	t.Run("ConcurrentPutAndMatch", func(t *testing.T) {
		t.Parallel()

		registry, release := provider()
		defer release()

		cache, err := registry.Open(t.Context(), "v1")
		if err != nil {
			t.Fatal(err)
		}

		requests := make([]*offlinecache.Request, 32)
		for i := range requests {
			requests[i] = &offlinecache.Request{Method: http.MethodGet, URL: fmt.Sprintf("/asset-%d", i)}
		}

		var eg errgroup.Group
		for i, req := range requests {
			eg.Go(func() error {
				return cache.Put(t.Context(), req, &offlinecache.Response{
					StatusCode: http.StatusOK,
					Body:       []byte(fmt.Sprintf("body-%d", i)),
				})
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		for i, req := range requests {
			eg.Go(func() error {
				got, err := cache.Match(t.Context(), req)
				if err != nil {
					return err
				}
				if got == nil {
					return fmt.Errorf("missing entry for %s", req.URL)
				}
				if want := fmt.Sprintf("body-%d", i); string(got.Body) != want {
					return fmt.Errorf("entry for %s: got body %q, want %q", req.URL, got.Body, want)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}
	})
}
