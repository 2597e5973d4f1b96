package store

import "errors"

var (
	ErrOpen   = errors.New("unable to open cache store")
	ErrKeys   = errors.New("unable to list cache store names")
	ErrDelete = errors.New("unable to delete cache store")
	ErrPut    = errors.New("unable to store response in cache store")
	ErrMatch  = errors.New("unable to retrieve response from cache store")
)
