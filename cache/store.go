package cache

import (
	"context"
	"time"
)

// Store is a key/value cache with per-entry TTL.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// Get retrieves the value for a key.
	// The second return value reports whether the key was present and
	// unexpired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under a key. The entry expires after ttl; a zero
	// ttl stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes a key. Removing an absent key is not an error.
	Invalidate(ctx context.Context, key string) error

	// Close closes the store and releases resources.
	Close() error
}

// Default TTLs per pipeline stage. Verdicts and rank order survive longer
// because they are more expensive to regenerate than the final render.
const (
	TTLSearch  = time.Hour
	TTLVerdict = 6 * time.Hour
	TTLRank    = 6 * time.Hour
	TTLFormat  = time.Hour
	TTLResult  = time.Hour
)
