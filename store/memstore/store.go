package memstore

import (
	"context"
	"sync"

	offlinecache "github.com/webshim/offline-cache"
	"github.com/webshim/offline-cache/internal/keyhash"
)

// Registry is an in-memory cache registry. Each named store keeps its
// entries in one or more mutex-guarded buckets; with more than one
// bucket, entries are distributed by a hash of the request identity to
// reduce contention between concurrent fetch events.
type Registry struct {
	mu      sync.RWMutex
	stores  map[string]*memStore
	options options
}

var _ offlinecache.CacheRegistry = (*Registry)(nil)

// NewRegistry creates a new in-memory cache registry.
func NewRegistry(opts ...Option) *Registry {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &Registry{
		stores:  map[string]*memStore{},
		options: options,
	}
}

// Open returns the store with the given name, creating it if absent.
func (r *Registry) Open(_ context.Context, name string) (offlinecache.CacheStore, error) {
	r.mu.RLock()
	if s, ok := r.stores[name]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[name]; ok {
		return s, nil
	}
	s := newMemStore(r.options.bucketsSize)
	r.stores[name] = s
	return s, nil
}

// Keys lists the names of all stores in the registry.
func (r *Registry) Keys(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names, nil
}

// Delete removes the store with the given name and everything in it.
func (r *Registry) Delete(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[name]; !ok {
		return false, nil
	}
	delete(r.stores, name)
	return true, nil
}

type bucket struct {
	mu sync.RWMutex
	m  map[string]*offlinecache.Response
}

type memStore struct {
	buckets []*bucket
}

var _ offlinecache.CacheStore = (*memStore)(nil)

func newMemStore(bucketsSize int) *memStore {
	buckets := make([]*bucket, bucketsSize)
	for i := range buckets {
		buckets[i] = &bucket{m: map[string]*offlinecache.Response{}}
	}
	return &memStore{buckets: buckets}
}

// resolveBucket returns the bucket that corresponds to the given key.
func (s *memStore) resolveBucket(key string) *bucket {
	index := keyhash.Sum(key) % len(s.buckets)
	if index < 0 {
		index *= -1
	}
	return s.buckets[index]
}

func (s *memStore) Put(_ context.Context, req *offlinecache.Request, res *offlinecache.Response) error {
	key := req.Key()
	bucket := s.resolveBucket(key)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.m[key] = res.Clone()
	return nil
}

func (s *memStore) Match(_ context.Context, req *offlinecache.Request) (*offlinecache.Response, error) {
	key := req.Key()
	bucket := s.resolveBucket(key)
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()

	if res, ok := bucket.m[key]; ok {
		return res.Clone(), nil
	}
	return nil, nil
}
