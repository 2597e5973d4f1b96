// Package clients tracks open client sessions and which cache version
// controls them.
package clients
