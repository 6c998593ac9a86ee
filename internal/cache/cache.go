// internal/cache/cache.go
package cache

import (
	"context"
	"time"
)

// SummaryCache fronts the read API with short-lived cached payloads.
// Implementations must be safe for concurrent use.
type SummaryCache interface {
	// Get returns the cached payload for key, or (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a payload with the configured TTL.
	Set(ctx context.Context, key string, payload []byte)
	// InvalidateAll drops every cached summary, called after a refresh.
	InvalidateAll(ctx context.Context)
}

// TTL guard rails; anything outside this range is a config mistake.
const (
	minTTL = time.Second
	maxTTL = time.Hour
)

func clampTTL(ttl time.Duration) time.Duration {
	if ttl < minTTL {
		return minTTL
	}
	if ttl > maxTTL {
		return maxTTL
	}
	return ttl
}
