// Package keyhash hashes request identity strings for bucket resolution.
package keyhash

const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// Sum returns the FNV-1a hash of the key. The result may be negative
// when truncated to int; callers resolving bucket indexes must take the
// absolute value after the modulo.
func Sum(key string) int {
	var h uint64 = offset64
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= prime64
	}
	return int(h)
}
