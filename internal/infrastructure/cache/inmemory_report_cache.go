package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryReportCache implements the report cache with an in-memory map.
// Suitable for single-instance deployments and testing. Entries are stored
// as JSON so behavior matches the Redis cache.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewInMemoryReportCache creates an empty in-memory report cache.
func NewInMemoryReportCache() *InMemoryReportCache {
	return &InMemoryReportCache{entries: make(map[string]cacheEntry)}
}

// Get loads a cached report into dest. Expired entries count as absent and
// are dropped on access.
func (c *InMemoryReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(e.payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return true, nil
}

// Set stores a report with the given TTL.
func (c *InMemoryReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate drops a cached report.
func (c *InMemoryReportCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
