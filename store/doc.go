// Package store provides cache registry adapters and utilities for the
// offline-cache library.
//
// This package contains function adapters such as FuncStore and
// FuncRegistry, which allow building custom cache hosts from callbacks,
// and defines common error types for store operations: ErrOpen,
// ErrKeys, ErrDelete, ErrPut, and ErrMatch.
package store
