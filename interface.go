package offlinecache

import (
	"context"
)

// CacheStore is a single named cache of request/response pairs.
// Implementations must be safe for concurrent readers with a single
// writer during installation.
type CacheStore interface {
	// Put stores a response under the request's identity.
	// If an entry already exists for the request, it is overwritten.
	// Implementations must clone the response before storing it.
	Put(context.Context, *Request, *Response) error

	// Match retrieves the response stored under the request's identity.
	// If no entry matches, it returns nil as the Response.
	// Implementations must clone the returned response.
	Match(context.Context, *Request) (*Response, error)
}

// CacheRegistry is the host's collection of named cache stores.
// Implementations must be thread-safe.
type CacheRegistry interface {
	// Open returns the store with the given name, creating it if absent.
	Open(context.Context, string) (CacheStore, error)

	// Keys lists the names of all stores known to the registry.
	Keys(context.Context) ([]string, error)

	// Delete removes the store with the given name and everything in it.
	// It reports whether a store with that name existed.
	Delete(context.Context, string) (bool, error)
}

// Network issues a request to the origin and awaits its response.
type Network interface {
	// Fetch performs the request and returns the response, or an error
	// if the origin could not be reached or did not answer.
	Fetch(context.Context, *Request) (*Response, error)
}

// NetworkFunc is a function type that implements the Network interface.
type NetworkFunc func(context.Context, *Request) (*Response, error)

// Fetch calls the function.
func (f NetworkFunc) Fetch(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// ClientController grants a cache version immediate control over the
// host's open client sessions, instead of waiting for their next load.
type ClientController interface {
	// Claim places every open client under control of the given version.
	Claim(context.Context, string) error
}
