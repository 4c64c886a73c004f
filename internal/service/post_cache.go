package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"blog-api/internal/domain"
)

const (
	defaultPostCacheTTL  = 5 * time.Minute
	defaultPostCacheSize = 1000
	postListKeyPrefix    = "posts:list:"
)

// PostListCache memoiza el listado de posts por usuario autenticado.
// Las claves se derivan del id de usuario, nunca del header crudo.
type PostListCache interface {
	Get(ctx context.Context, userID string) ([]domain.Post, bool)
	Set(ctx context.Context, userID string, posts []domain.Post)
	Invalidate(ctx context.Context, userID string)
}

func postListKey(userID string) string {
	return postListKeyPrefix + strings.TrimSpace(userID)
}

type lruPostListCache struct {
	items *expirable.LRU[string, []domain.Post]
}

// NewLRUPostListCache crea un cache en memoria acotado por tamaño y TTL.
func NewLRUPostListCache(size int, ttl time.Duration) PostListCache {
	if size <= 0 {
		size = defaultPostCacheSize
	}
	if ttl <= 0 {
		ttl = defaultPostCacheTTL
	}
	return &lruPostListCache{
		items: expirable.NewLRU[string, []domain.Post](size, nil, ttl),
	}
}

func (c *lruPostListCache) Get(_ context.Context, userID string) ([]domain.Post, bool) {
	posts, ok := c.items.Get(postListKey(userID))
	if !ok {
		return nil, false
	}
	return clonePosts(posts), true
}

func (c *lruPostListCache) Set(_ context.Context, userID string, posts []domain.Post) {
	if len(posts) == 0 {
		return
	}
	c.items.Add(postListKey(userID), clonePosts(posts))
}

func (c *lruPostListCache) Invalidate(_ context.Context, userID string) {
	c.items.Remove(postListKey(userID))
}

func clonePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	return out
}

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisPostListCache struct {
	client redisKVClient
	ttl    time.Duration
}

// NewRedisPostListCache comparte el cache entre instancias. Los errores de
// Redis se tratan como miss.
func NewRedisPostListCache(client *redis.Client, ttl time.Duration) PostListCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultPostCacheTTL
	}
	return &redisPostListCache{client: client, ttl: ttl}
}

func (c *redisPostListCache) Get(ctx context.Context, userID string) ([]domain.Post, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, postListKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil || len(posts) == 0 {
		return nil, false
	}
	return posts, true
}

func (c *redisPostListCache) Set(ctx context.Context, userID string, posts []domain.Post) {
	if len(posts) == 0 {
		return
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, postListKey(userID), raw, c.ttl).Err()
}

func (c *redisPostListCache) Invalidate(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, postListKey(userID)).Err()
}
