package resolution

import (
	"context"
	"time"
)

// ReportCache stores rendered analysis reports under stable keys. Analysis
// runs are read-heavy and expensive, so services consult the cache first and
// only recompute on miss or explicit rebuild. A nil-safe no-op implementation
// is acceptable; caching is an optimization, never a correctness dependency.
type ReportCache interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// the key existed.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Invalidate removes key.
	Invalidate(ctx context.Context, key string) error
}
