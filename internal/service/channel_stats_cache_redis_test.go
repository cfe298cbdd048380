package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func TestRedisChannelStatsCacheSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	_, client := newRedisClientForTest(t)
	cache := NewRedisChannelStatsCache(client, "stats_test")

	if _, ok, err := cache.Get(ctx, 7); err != nil || ok {
		t.Fatalf("expected miss on empty cache, ok=%v err=%v", ok, err)
	}

	want := ChannelStats{Subscribers: 120, SubscribedTo: 4}
	if err := cache.Set(ctx, 7, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := cache.Get(ctx, 7)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}

	if err := cache.Invalidate(ctx, 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, 7); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestRedisChannelStatsCacheExpiry(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	cache := NewRedisChannelStatsCache(client, "")

	if err := cache.Set(ctx, 1, ChannelStats{Subscribers: 1}, time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	server.FastForward(2 * time.Second)
	if _, ok, _ := cache.Get(ctx, 1); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestRedisChannelStatsCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	cache := NewRedisChannelStatsCache(client, "stats_test")

	if err := server.Set("stats_test:9", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, ok, err := cache.Get(ctx, 9); err != nil || ok {
		t.Fatalf("corrupt entry must be a miss, ok=%v err=%v", ok, err)
	}
}

func TestInMemoryChannelStatsCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryChannelStatsCache()

	if err := cache.Set(ctx, 3, ChannelStats{Subscribers: 5}, 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, 3); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := cache.Get(ctx, 3); ok {
		t.Fatal("expected miss after expiry")
	}
}
