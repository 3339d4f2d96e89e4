package permissions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLCache wraps Redis lookups of permission data behind an explicit
// staleness contract: entries older than the TTL are still returned, but
// flagged stale so callers can decide whether to serve or refresh them.
// Entries are evicted entirely after twice the TTL.
type TTLCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

type cacheEnvelope struct {
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// NewTTLCache constructs a TTLCache with the given freshness window.
func NewTTLCache(client *redis.Client, ttl time.Duration) *TTLCache {
	return &TTLCache{client: client, ttl: ttl, now: time.Now}
}

// Get loads a cached value into dest. The first return reports whether an
// entry was found, the second whether it is past the freshness window.
func (c *TTLCache) Get(ctx context.Context, key string, dest any) (found bool, stale bool, err error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}
	var env cacheEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return false, false, err
	}
	if err := json.Unmarshal(env.Value, dest); err != nil {
		return false, false, err
	}
	return true, c.now().Sub(env.StoredAt) > c.ttl, nil
}

// Set stores a value under the key.
func (c *TTLCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(cacheEnvelope{Value: raw, StoredAt: c.now()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, 2*c.ttl).Err()
}

// Invalidate drops entries for the given keys.
func (c *TTLCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// TTL exposes the configured freshness window.
func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}
