package sqlitestore_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	offlinecache "github.com/webshim/offline-cache"
	"github.com/webshim/offline-cache/store/sqlitestore"
	"github.com/webshim/offline-cache/store/storetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := sqlitestore.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenRequiresStoreName(t *testing.T) {
	t.Parallel()

	registry, err := sqlitestore.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	if _, err := registry.Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty store name")
	}
}

func TestRegistrySpec(t *testing.T) {
	t.Parallel()

	storetest.TestRegistry(t, func() (offlinecache.CacheRegistry, func()) {
		registry, err := sqlitestore.Open(filepath.Join(t.TempDir(), "cache.db"))
		if err != nil {
			t.Fatal(err)
		}
		return registry, func() {
			_ = registry.Close()
		}
	})
}

func TestEntriesSurviveReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	req := &offlinecache.Request{Method: http.MethodGet, URL: "/"}

	registry, err := sqlitestore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	cache, err := registry.Open(context.Background(), "v1")
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(context.Background(), req, &offlinecache.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/html"}},
		Body:       []byte("<!doctype html>"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := registry.Close(); err != nil {
		t.Fatal(err)
	}

	registry, err = sqlitestore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer registry.Close()

	cache, err = registry.Open(context.Background(), "v1")
	if err != nil {
		t.Fatal(err)
	}
	got, err := cache.Match(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("entry must survive a close and reopen")
	}
	if string(got.Body) != "<!doctype html>" {
		t.Errorf("unexpected body after reopen: %q", got.Body)
	}
	if got.Header.Get("Content-Type") != "text/html" {
		t.Errorf("unexpected content type after reopen: %q", got.Header.Get("Content-Type"))
	}
}
