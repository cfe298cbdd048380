package service

import (
	"context"
	"sync"
	"time"
)

// ChannelStats are the aggregate counts shown on a channel profile.
type ChannelStats struct {
	Subscribers  int64 `json:"subscribers"`
	SubscribedTo int64 `json:"subscribed_to"`
}

// ChannelStatsCache fronts the subscription count queries. Entries are
// invalidated on subscribe/unsubscribe, so staleness is bounded by the TTL
// only for writes that bypass this process.
type ChannelStatsCache interface {
	Get(ctx context.Context, channelID uint) (ChannelStats, bool, error)
	Set(ctx context.Context, channelID uint, stats ChannelStats, ttl time.Duration) error
	Invalidate(ctx context.Context, channelID uint) error
}

type NoopChannelStatsCache struct{}

func NewNoopChannelStatsCache() *NoopChannelStatsCache { return &NoopChannelStatsCache{} }

func (c *NoopChannelStatsCache) Get(context.Context, uint) (ChannelStats, bool, error) {
	return ChannelStats{}, false, nil
}

func (c *NoopChannelStatsCache) Set(context.Context, uint, ChannelStats, time.Duration) error {
	return nil
}

func (c *NoopChannelStatsCache) Invalidate(context.Context, uint) error { return nil }

type inMemoryStatsEntry struct {
	stats     ChannelStats
	expiresAt time.Time
}

type InMemoryChannelStatsCache struct {
	mu    sync.RWMutex
	store map[uint]inMemoryStatsEntry
}

func NewInMemoryChannelStatsCache() *InMemoryChannelStatsCache {
	return &InMemoryChannelStatsCache{store: make(map[uint]inMemoryStatsEntry)}
}

func (c *InMemoryChannelStatsCache) Get(_ context.Context, channelID uint) (ChannelStats, bool, error) {
	c.mu.RLock()
	entry, ok := c.store[channelID]
	c.mu.RUnlock()
	if !ok {
		return ChannelStats{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.store, channelID)
		c.mu.Unlock()
		return ChannelStats{}, false, nil
	}
	return entry.stats, true, nil
}

func (c *InMemoryChannelStatsCache) Set(_ context.Context, channelID uint, stats ChannelStats, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.store[channelID] = inMemoryStatsEntry{stats: stats, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryChannelStatsCache) Invalidate(_ context.Context, channelID uint) error {
	c.mu.Lock()
	delete(c.store, channelID)
	c.mu.Unlock()
	return nil
}
