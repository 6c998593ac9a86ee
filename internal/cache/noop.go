// internal/cache/noop.go
package cache

import "context"

// NoopCache is the fallback when caching is disabled or Redis is down.
type NoopCache struct{}

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, []byte)        {}
func (NoopCache) InvalidateAll(context.Context)              {}
