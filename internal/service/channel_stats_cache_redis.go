package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisChannelStatsCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisChannelStatsCache(client redis.UniversalClient, prefix string) *RedisChannelStatsCache {
	if prefix == "" {
		prefix = "channel_stats"
	}
	return &RedisChannelStatsCache{client: client, prefix: prefix}
}

func (c *RedisChannelStatsCache) key(channelID uint) string {
	return fmt.Sprintf("%s:%d", c.prefix, channelID)
}

func (c *RedisChannelStatsCache) Get(ctx context.Context, channelID uint) (ChannelStats, bool, error) {
	if c.client == nil {
		return ChannelStats{}, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(channelID)).Result()
	if err == redis.Nil {
		return ChannelStats{}, false, nil
	}
	if err != nil {
		return ChannelStats{}, false, err
	}
	var stats ChannelStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the
		// next Set.
		return ChannelStats{}, false, nil
	}
	return stats, true, nil
}

func (c *RedisChannelStatsCache) Set(ctx context.Context, channelID uint, stats ChannelStats, ttl time.Duration) error {
	if c.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(channelID), raw, ttl).Err()
}

func (c *RedisChannelStatsCache) Invalidate(ctx context.Context, channelID uint) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(channelID)).Err()
}
