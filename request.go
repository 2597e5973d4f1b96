package offlinecache

import (
	"net/http"
)

// Request describes an intercepted outgoing request.
type Request struct {
	// Method is the HTTP method of the request.
	Method string

	// URL is the request target. For precached assets this is the asset
	// path as listed in Config.Assets.
	URL string

	// Header carries the request headers. It may be nil.
	Header http.Header

	// Navigate indicates the request loads a new top-level document
	// rather than a sub-resource.
	Navigate bool
}

// Key returns the identity under which the request is cached.
// Two requests with the same key match the same cache entry.
func (r *Request) Key() string {
	return r.Method + " " + r.URL
}

// IsSafeRead reports whether the request method has no side effects on
// the origin. Only such requests are candidates for cache serving.
func (r *Request) IsSafeRead() bool {
	return r.Method == http.MethodGet
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Header = cloneHeader(r.Header)
	return &clone
}

// Response is a stored or live response to a request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header carries the response headers. It may be nil.
	Header http.Header

	// Body is the full response body.
	Body []byte
}

// Clone returns a deep copy of the response. Cache stores rely on this
// to hand out entries that callers may mutate freely.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	clone := &Response{
		StatusCode: r.StatusCode,
		Header:     cloneHeader(r.Header),
	}
	if r.Body != nil {
		clone.Body = make([]byte, len(r.Body))
		copy(clone.Body, r.Body)
	}
	return clone
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	clone := make(http.Header, len(h))
	for k, vs := range h {
		vv := make([]string, len(vs))
		copy(vv, vs)
		clone[k] = vv
	}
	return clone
}
