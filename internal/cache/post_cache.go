// Package cache keeps the hot read paths off the database with a small
// redis layer. The cache is strictly optional: a nil *PostCache is a valid
// value whose operations all miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dfryer1193/blogwire/blog/domain"
	"github.com/redis/go-redis/v9"
)

const allPostsKey = "posts:all"

func postKey(id string) string {
	return fmt.Sprintf("post:%s", id)
}

type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	return &PostCache{
		client: client,
		ttl:    ttl,
	}
}

// GetAllPosts returns the cached public list, or nil on a miss.
func (c *PostCache) GetAllPosts(ctx context.Context) ([]*domain.Post, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, allPostsKey).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var posts []*domain.Post
	if err := json.Unmarshal([]byte(data), &posts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return posts, nil
}

// SetAllPosts stores the public list with the configured TTL.
func (c *PostCache) SetAllPosts(ctx context.Context, posts []*domain.Post) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}

	if err := c.client.Set(ctx, allPostsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// GetPost returns a cached post, or nil on a miss.
func (c *PostCache) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, postKey(id)).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var post domain.Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return &post, nil
}

// SetPost stores a single post with the configured TTL.
func (c *PostCache) SetPost(ctx context.Context, post *domain.Post) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	if err := c.client.Set(ctx, postKey(post.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Invalidate drops the public list and, when id is non-empty, the single
// post entry. Mutation paths call this after every confirmed write.
func (c *PostCache) Invalidate(ctx context.Context, id string) error {
	if c == nil {
		return nil
	}

	keys := []string{allPostsKey}
	if id != "" {
		keys = append(keys, postKey(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}

// Ping checks if redis is available
func (c *PostCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
