package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"conduit/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Aside reads key into dest, or calls fetch to fill dest and stores the result with ttl.
// family labels the lookup in metrics. Cache failures never fail the read.
func Aside(ctx context.Context, family, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(family, "hit").Inc()
			return nil
		}
	} else if !errors.Is(err, redis.Nil) {
		observability.CacheLookups.WithLabelValues(family, "error").Inc()
		return fetch()
	}

	observability.CacheLookups.WithLabelValues(family, "miss").Inc()
	if err := fetch(); err != nil {
		return err
	}

	if b, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, b, ttl)
	}
	return nil
}

// Invalidate deletes the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}
