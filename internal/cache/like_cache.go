package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LikeCache keeps per-ad like counts in Redis so the ad detail and listing
// pages do not hit the likes table on every request. A miss falls back to
// the database; mutations invalidate the key.
type LikeCache struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewLikeCache(redisURL string, ttl time.Duration) (*LikeCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &LikeCache{
		client: client,
		ctx:    ctx,
		ttl:    ttl,
	}, nil
}

func likeKey(adID uint) string {
	return fmt.Sprintf("ad:%d:likes", adID)
}

// GetCount returns (count, true) on a cache hit, (0, false) on a miss.
func (c *LikeCache) GetCount(adID uint) (int64, bool, error) {
	val, err := c.client.Get(c.ctx, likeKey(adID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}

	return count, true, nil
}

func (c *LikeCache) SetCount(adID uint, count int64) error {
	return c.client.Set(c.ctx, likeKey(adID), count, c.ttl).Err()
}

// Invalidate drops the cached count after a like or unlike.
func (c *LikeCache) Invalidate(adID uint) error {
	return c.client.Del(c.ctx, likeKey(adID)).Err()
}

func (c *LikeCache) Close() error {
	return c.client.Close()
}
