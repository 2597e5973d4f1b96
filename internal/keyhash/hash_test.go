package keyhash_test

import (
	"testing"

	"github.com/webshim/offline-cache/internal/keyhash"
)

func TestSum(t *testing.T) {
	t.Parallel()

	keys := []string{
		"GET /",
		"GET /static/manifest.json",
		"GET /static/icons/icon-192.png",
		"POST /api/measurements",
	}

	seen := make(map[int]string, len(keys))
	for _, key := range keys {
		sum := keyhash.Sum(key)
		if again := keyhash.Sum(key); again != sum {
			t.Errorf("Sum(%q) is not deterministic: %d != %d", key, sum, again)
		}
		if prev, ok := seen[sum]; ok {
			t.Errorf("Sum collision between %q and %q", prev, key)
		}
		seen[sum] = key
	}
}

func TestSumEmptyKey(t *testing.T) {
	t.Parallel()

	// FNV-1a of the empty string is the offset basis.
	if got := keyhash.Sum(""); uint64(got) != 14695981039346656037 {
		t.Errorf("unexpected hash for empty key: %d", got)
	}
}
