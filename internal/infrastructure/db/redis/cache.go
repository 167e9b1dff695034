package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NoteCache caches note content by share code for the retrieve path.
// Key format: note:<code>. Entry TTLs are set by the caller and must never
// exceed the note's remaining lifetime, which keeps a cache hit from serving
// an expired note.
type NoteCache struct {
	client *redis.Client
}

// NewNoteCache creates a NoteCache wrapping the given Redis client.
func NewNoteCache(client *redis.Client) *NoteCache {
	return &NoteCache{client: client}
}

// Get returns the cached content for code, reporting ok=false on a miss.
func (c *NoteCache) Get(ctx context.Context, code string) (string, bool, error) {
	content, err := c.client.Get(ctx, c.key(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return content, true, nil
}

// Set stores content under code for at most ttl. Non-positive TTLs are
// dropped instead of cached forever.
func (c *NoteCache) Set(ctx context.Context, code string, content string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(code), content, ttl).Err()
}

// Invalidate evicts the entry for code. Missing keys are not an error.
func (c *NoteCache) Invalidate(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

func (c *NoteCache) key(code string) string {
	return "note:" + code
}
