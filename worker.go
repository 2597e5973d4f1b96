package offlinecache

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/errgroup"
)

// Config holds the build-time constants of a cache version.
type Config struct {
	// CacheName is the version tag. It names the cache store populated
	// during install and discriminates superseded stores during activate.
	CacheName string

	// Assets is the ordered list of paths precached during install.
	// It is the minimum set of resources required for offline bootstrap.
	Assets []string

	// Fallback is the path of the document served to navigations when
	// the origin is unreachable. Defaults to "/".
	Fallback string
}

// Worker implements the three lifecycle operations of an offline cache
// version: install precaches the assets, activate removes superseded
// stores, and fetch decides between cache and network per request.
type Worker struct {
	config  Config
	caches  CacheRegistry
	network Network
	onError func(error)
}

// WorkerOption configures a Worker.
type WorkerOption interface {
	apply(*Worker)
}

type workerOptionFunc func(*Worker)

func (f workerOptionFunc) apply(w *Worker) {
	f(w)
}

// WithDeleteErrorHandler sets a handler for per-store deletion errors
// swallowed during activation. Without it such errors are discarded.
func WithDeleteErrorHandler(f func(error)) WorkerOption {
	return workerOptionFunc(func(w *Worker) {
		w.onError = f
	})
}

// NewWorker creates a Worker for the given version against an injected
// cache registry and network.
func NewWorker(config Config, caches CacheRegistry, network Network, opts ...WorkerOption) (*Worker, error) {
	if config.CacheName == "" {
		return nil, ErrMissingCacheName
	}
	if caches == nil {
		return nil, ErrMissingRegistry
	}
	if network == nil {
		return nil, ErrMissingNetwork
	}
	if config.Fallback == "" {
		config.Fallback = "/"
	}

	w := &Worker{
		config:  config,
		caches:  caches,
		network: network,
	}
	for _, o := range opts {
		o.apply(w)
	}
	return w, nil
}

// Config returns the worker's configuration.
func (w *Worker) Config() Config {
	return w.config
}

// Install opens the store named by the version tag and populates it with
// every asset, fetching each over the network. Population is
// all-or-nothing: if any asset cannot be fetched or stored, Install
// fails and the version must not be activated.
func (w *Worker) Install(ctx context.Context) error {
	store, err := w.caches.Open(ctx, w.config.CacheName)
	if err != nil {
		return fmt.Errorf("open cache %q: %w", w.config.CacheName, err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, path := range w.config.Assets {
		eg.Go(func() error {
			req := &Request{Method: http.MethodGet, URL: path}
			res, err := w.network.Fetch(ctx, req)
			if err != nil {
				return fmt.Errorf("precache %q: %w", path, err)
			}
			if res.StatusCode < 200 || res.StatusCode > 299 {
				return fmt.Errorf("precache %q: unexpected status %d", path, res.StatusCode)
			}
			if err := store.Put(ctx, req, res); err != nil {
				return fmt.Errorf("precache %q: %w", path, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Activate deletes every store whose name differs from the version tag.
// Deletions are independent and best-effort: a failure to delete one
// store does not block the others. Swallowed errors are reported to the
// handler set with WithDeleteErrorHandler, if any.
func (w *Worker) Activate(ctx context.Context) error {
	names, err := w.caches.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list caches: %w", err)
	}

	iter.ForEach(names, func(name *string) {
		if *name == w.config.CacheName {
			return
		}
		if _, err := w.caches.Delete(ctx, *name); err != nil && w.onError != nil {
			w.onError(fmt.Errorf("delete cache %q: %w", *name, err))
		}
	})
	return nil
}

// Fetch decides how to answer an intercepted request:
//
//  1. Non-GET requests pass through to the network unmodified.
//  2. Navigations are answered with the cached fallback document when
//     present; otherwise from the network; if the network fails, the
//     cached fallback is tried once more before the network error is
//     returned.
//  3. Any other GET is answered with its exact cached entry when
//     present, otherwise from the network with no fallback.
//
// Fetch never writes to the cache; stores are populated only by Install.
func (w *Worker) Fetch(ctx context.Context, req *Request) (*Response, error) {
	if !req.IsSafeRead() {
		return w.network.Fetch(ctx, req)
	}

	store, err := w.caches.Open(ctx, w.config.CacheName)
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", w.config.CacheName, err)
	}

	if req.Navigate {
		return w.fetchNavigation(ctx, store, req)
	}

	res, err := store.Match(ctx, req)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return w.network.Fetch(ctx, req)
}

func (w *Worker) fetchNavigation(ctx context.Context, store CacheStore, req *Request) (*Response, error) {
	fallback := &Request{Method: http.MethodGet, URL: w.config.Fallback}

	res, err := store.Match(ctx, fallback)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	res, netErr := w.network.Fetch(ctx, req)
	if netErr == nil {
		return res, nil
	}

	res, err = store.Match(ctx, fallback)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return nil, netErr
}
