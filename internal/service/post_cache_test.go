package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"blog-api/internal/domain"
)

func TestLRUPostListCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewLRUPostListCache(2, time.Minute)
	ctx := context.Background()
	posts := []domain.Post{{ID: "p1"}}

	cache.Set(ctx, "u1", posts)
	cache.Set(ctx, "u2", posts)
	if _, ok := cache.Get(ctx, "u1"); !ok {
		t.Fatalf("expected u1 cached")
	}
	cache.Set(ctx, "u3", posts)

	if _, ok := cache.Get(ctx, "u2"); ok {
		t.Fatalf("expected u2 evicted as least recently used")
	}
	if _, ok := cache.Get(ctx, "u1"); !ok {
		t.Fatalf("expected u1 kept")
	}
}

func TestLRUPostListCache_ExpiresEntries(t *testing.T) {
	cache := NewLRUPostListCache(10, 50*time.Millisecond)
	ctx := context.Background()
	cache.Set(ctx, "u1", []domain.Post{{ID: "p1"}})

	time.Sleep(120 * time.Millisecond)
	if _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatalf("expected entry expired")
	}
}

func TestLRUPostListCache_IgnoresEmptyAndCopies(t *testing.T) {
	cache := NewLRUPostListCache(10, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "u1", nil)
	if _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatalf("expected empty list not cached")
	}

	cache.Set(ctx, "u1", []domain.Post{{ID: "p1"}})
	got, _ := cache.Get(ctx, "u1")
	got[0].ID = "mutated"
	again, _ := cache.Get(ctx, "u1")
	if again[0].ID != "p1" {
		t.Fatalf("expected cached value isolated from callers")
	}

	cache.Invalidate(ctx, "u1")
	if _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatalf("expected entry invalidated")
	}
}

type mockRedisKVClient struct {
	store      map[string][]byte
	lastSetKey string
	lastSetTTL time.Duration
	lastDel    []string
	getErr     error
}

func newMockRedisKVClient() *mockRedisKVClient {
	return &mockRedisKVClient{store: make(map[string][]byte)}
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	val, ok := m.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(val))
	return cmd
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	if raw, ok := value.([]byte); ok {
		m.store[key] = raw
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	for _, k := range keys {
		delete(m.store, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisPostListCache_RoundTripAndKeys(t *testing.T) {
	mock := newMockRedisKVClient()
	cache := &redisPostListCache{client: mock, ttl: 5 * time.Minute}
	ctx := context.Background()
	posts := []domain.Post{{ID: "p1", Title: "t", AuthorID: "u1", CreatedAt: time.Now().UTC().Truncate(time.Second)}}

	cache.Set(ctx, "u1", posts)
	if mock.lastSetKey != "posts:list:u1" || mock.lastSetTTL != 5*time.Minute {
		t.Fatalf("unexpected set key/ttl: %q %v", mock.lastSetKey, mock.lastSetTTL)
	}
	var stored []domain.Post
	if err := json.Unmarshal(mock.store["posts:list:u1"], &stored); err != nil || len(stored) != 1 {
		t.Fatalf("expected json payload, got %v", err)
	}

	got, ok := cache.Get(ctx, "u1")
	if !ok || len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("expected cached posts, got %+v %v", got, ok)
	}
	if _, ok := cache.Get(ctx, "u2"); ok {
		t.Fatalf("expected miss for other user")
	}

	cache.Invalidate(ctx, "u1")
	if len(mock.lastDel) != 1 || mock.lastDel[0] != "posts:list:u1" {
		t.Fatalf("unexpected del keys: %+v", mock.lastDel)
	}
	if _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestRedisPostListCache_ErrorIsMiss(t *testing.T) {
	mock := newMockRedisKVClient()
	mock.getErr = errors.New("redis down")
	cache := &redisPostListCache{client: mock, ttl: time.Minute}
	if _, ok := cache.Get(context.Background(), "u1"); ok {
		t.Fatalf("expected redis error to be a miss")
	}
}
