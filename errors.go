package offlinecache

import "errors"

var (
	ErrMissingCacheName = errors.New("cache name is required")
	ErrMissingRegistry  = errors.New("cache registry is required")
	ErrMissingNetwork   = errors.New("network is required")
)
