// Package sqlitestore provides a SQLite-backed cache registry, for hosts
// that persist cache stores across restarts.
package sqlitestore
