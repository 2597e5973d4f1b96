package store

import (
	"context"

	offlinecache "github.com/webshim/offline-cache"
)

var _ offlinecache.CacheStore = (*FuncStore)(nil)

// FuncStore is an offlinecache.CacheStore implementation that uses
// functions to perform the store operations.
type FuncStore struct {
	// PutFunc stores a response under the request's identity.
	// If an entry already exists for the request, it should overwrite it.
	PutFunc func(context.Context, *offlinecache.Request, *offlinecache.Response) error

	// MatchFunc retrieves the response stored under the request's identity.
	// If no entry matches, it should return nil as the Response.
	MatchFunc func(context.Context, *offlinecache.Request) (*offlinecache.Response, error)
}

// Put calls the PutFunc function to store the response.
func (s *FuncStore) Put(ctx context.Context, req *offlinecache.Request, res *offlinecache.Response) error {
	return s.PutFunc(ctx, req, res)
}

// Match calls the MatchFunc function to retrieve the stored response.
func (s *FuncStore) Match(ctx context.Context, req *offlinecache.Request) (*offlinecache.Response, error) {
	return s.MatchFunc(ctx, req)
}

var _ offlinecache.CacheRegistry = (*FuncRegistry)(nil)

// FuncRegistry is an offlinecache.CacheRegistry implementation that uses
// functions to perform the registry operations.
type FuncRegistry struct {
	// OpenFunc returns the store with the given name, creating it if absent.
	OpenFunc func(context.Context, string) (offlinecache.CacheStore, error)

	// KeysFunc lists the names of all stores known to the registry.
	KeysFunc func(context.Context) ([]string, error)

	// DeleteFunc removes the store with the given name and reports
	// whether a store with that name existed.
	DeleteFunc func(context.Context, string) (bool, error)
}

// Open calls the OpenFunc function to open the named store.
func (r *FuncRegistry) Open(ctx context.Context, name string) (offlinecache.CacheStore, error) {
	return r.OpenFunc(ctx, name)
}

// Keys calls the KeysFunc function to list the store names.
func (r *FuncRegistry) Keys(ctx context.Context) ([]string, error) {
	return r.KeysFunc(ctx)
}

// Delete calls the DeleteFunc function to delete the named store.
func (r *FuncRegistry) Delete(ctx context.Context, name string) (bool, error) {
	return r.DeleteFunc(ctx, name)
}

var _ offlinecache.CacheRegistry = (*SilentErrorRegistry)(nil)

// SilentErrorRegistry is a decorator for an offlinecache.CacheRegistry
// that silently handles Delete errors. Instead of propagating the error,
// it calls the provided OnError function and reports the store as
// absent. Open and Keys errors still propagate: serving and cleanup
// enumeration cannot proceed without them.
type SilentErrorRegistry struct {
	// Registry is the underlying registry that this decorator wraps.
	Registry offlinecache.CacheRegistry

	// OnError is a function that is called when a Delete error occurs.
	OnError func(error)
}

// Open opens the named store in the underlying registry.
func (r *SilentErrorRegistry) Open(ctx context.Context, name string) (offlinecache.CacheStore, error) {
	return r.Registry.Open(ctx, name)
}

// Keys lists the store names known to the underlying registry.
func (r *SilentErrorRegistry) Keys(ctx context.Context) ([]string, error) {
	return r.Registry.Keys(ctx)
}

// Delete deletes the named store in the underlying registry.
// If the deletion fails and an OnError handler is set, the error is
// passed to the handler. The method itself always returns nil.
func (r *SilentErrorRegistry) Delete(ctx context.Context, name string) (bool, error) {
	ok, err := r.Registry.Delete(ctx, name)
	if err != nil {
		if r.OnError != nil {
			r.OnError(err)
		}
		return false, nil
	}
	return ok, nil
}
