// Package cache provides the catalog read cache as a mono plugin.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono/pkg/storage"
)

// CacheService defines the high-level caching operations used by consumers.
type CacheService interface {
	// Get unmarshals the cached value into dest and reports whether the key was found.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores a JSON-encoded value with the default TTL.
	Set(ctx context.Context, key string, value any) error

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// InvalidateAll clears the whole cache database. The plugin is given its
	// own Redis database so this never touches rate-limit counters.
	InvalidateAll(ctx context.Context) error

	// Close closes the underlying storage connection.
	Close() error
}

// cacheService implements CacheService using the Storage interface.
type cacheService struct {
	storage storage.Storage
	prefix  string
	ttl     time.Duration
}

// NewCacheService creates a new CacheService wrapping the provided storage.
func NewCacheService(s storage.Storage, prefix string, ttl time.Duration) CacheService {
	return &cacheService{
		storage: s,
		prefix:  prefix,
		ttl:     ttl,
	}
}

func (c *cacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	fullKey := c.prefix + key

	data, err := c.storage.GetWithContext(ctx, fullKey)
	if err != nil {
		return false, fmt.Errorf("cache get error: %w", err)
	}

	// nil or empty means a miss
	if len(data) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A stale entry from an older payload shape is dropped, not fatal.
		_ = c.storage.DeleteWithContext(ctx, fullKey)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	return true, nil
}

func (c *cacheService) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

func (c *cacheService) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	fullKey := c.prefix + key

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.storage.SetWithContext(ctx, fullKey, data, ttl); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}

	return nil
}

func (c *cacheService) Delete(ctx context.Context, key string) error {
	if err := c.storage.DeleteWithContext(ctx, c.prefix+key); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *cacheService) InvalidateAll(ctx context.Context) error {
	if err := c.storage.ResetWithContext(ctx); err != nil {
		return fmt.Errorf("cache reset error: %w", err)
	}
	log.Printf("[cache] Invalidated all keys")
	return nil
}

func (c *cacheService) Close() error {
	return c.storage.Close()
}

// noopCache is used when Redis is disabled or unreachable; every read misses.
type noopCache struct{}

// NewNoopCacheService returns a CacheService that stores nothing.
func NewNoopCacheService() CacheService {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Set(context.Context, string, any) error { return nil }
func (noopCache) SetWithTTL(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, string) error { return nil }
func (noopCache) InvalidateAll(context.Context) error { return nil }
func (noopCache) Close() error { return nil }
