package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLFeed    = 30 * time.Second // feed pages churn with every vote/comment
	TTLPost    = 1 * time.Minute
	TTLTags    = 10 * time.Minute // tag list changes rarely
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixFeed = "feed:"
	PrefixPost = "post:"
	PrefixTags = "tags:"
)

// Service is the Redis cache interface used by read paths
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Feed page cache
	GetFeed(ctx context.Context, page, limit int) ([]byte, error)
	SetFeed(ctx context.Context, page, limit int, data interface{}) error
	InvalidateFeed(ctx context.Context) error

	// Single post cache
	GetPost(ctx context.Context, postID int64) ([]byte, error)
	SetPost(ctx context.Context, postID int64, data interface{}) error
	InvalidatePost(ctx context.Context, postID int64) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no redis, cache is a no-op
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func feedKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", PrefixFeed, page, limit)
}

func (c *redisCache) GetFeed(ctx context.Context, page, limit int) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, feedKey(page, limit)).Bytes()
}

func (c *redisCache) SetFeed(ctx context.Context, page, limit int, data interface{}) error {
	return c.Set(ctx, feedKey(page, limit), data, TTLFeed)
}

// InvalidateFeed drops every cached feed page. Feed ordering depends on
// last_action, so any activity event invalidates all pages at once.
func (c *redisCache) InvalidateFeed(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, PrefixFeed+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

func postKey(postID int64) string {
	return fmt.Sprintf("%s%d", PrefixPost, postID)
}

func (c *redisCache) GetPost(ctx context.Context, postID int64) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, postKey(postID)).Bytes()
}

func (c *redisCache) SetPost(ctx context.Context, postID int64, data interface{}) error {
	return c.Set(ctx, postKey(postID), data, TTLPost)
}

func (c *redisCache) InvalidatePost(ctx context.Context, postID int64) error {
	return c.Delete(ctx, postKey(postID))
}
