package pagecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "billfold:page:"

type redisCache struct {
	client redis.UniversalClient
}

// NewRedis returns a Cache backed by Redis so invalidation is shared
// across replicas.
func NewRedis(client redis.UniversalClient) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+path).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (c *redisCache) Set(ctx context.Context, path string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return c.client.Set(ctx, redisKeyPrefix+path, payload, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, path string) error {
	return c.client.Del(ctx, redisKeyPrefix+path).Err()
}
