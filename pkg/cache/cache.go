package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/farewise/fare-compare/pkg/redis"
)

// ErrMiss is returned when a key is absent or caching is disabled.
var ErrMiss = errors.New("cache miss")

// Manager handles caching with JSON serialization. A nil Manager (or a
// Manager without a Redis client) is valid and reports a miss on every Get,
// so callers never need a cache to function.
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager. redis may be nil.
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	if m == nil || m.redis == nil {
		return ErrMiss
	}

	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return ErrMiss
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}
	return nil
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m == nil || m.redis == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// Delete removes keys from the cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	if m == nil || m.redis == nil {
		return nil
	}
	return m.redis.Delete(ctx, keys...)
}
