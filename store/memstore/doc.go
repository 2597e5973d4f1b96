// Package memstore provides an in-memory cache registry implementation.
package memstore
