// Package pagecache caches rendered dashboard payloads by logical route
// path and lets mutations mark a path stale so the next view re-fetches.
package pagecache

import (
	"context"
	"time"
)

// DefaultTTL bounds staleness for entries nobody invalidates explicitly.
const DefaultTTL = 5 * time.Minute

type Cache interface {
	Get(ctx context.Context, path string) ([]byte, bool, error)
	Set(ctx context.Context, path string, payload []byte, ttl time.Duration) error
	// Invalidate drops the cached payload for a logical route path.
	Invalidate(ctx context.Context, path string) error
}
