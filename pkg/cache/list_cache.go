package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"bookstack/pkg/domain"
)

// BookListCache holds a single cached snapshot of the book-list view.
// Any book mutation invalidates the whole snapshot.
type BookListCache interface {
	Get(ctx context.Context) ([]domain.Book, bool, error)
	Set(ctx context.Context, books []domain.Book) error
	Invalidate(ctx context.Context) error
}

const defaultListTTL = 5 * time.Minute

// RedisListCache implements BookListCache on a Redis key.
type RedisListCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisListCache creates the cache. TTL <= 0 falls back to a default.
func NewRedisListCache(client *redis.Client, key string, ttl time.Duration) (*RedisListCache, error) {
	if client == nil {
		return nil, errors.New("list cache requires a redis client")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "bookstack:books:list"
	}
	if ttl <= 0 {
		ttl = defaultListTTL
	}
	return &RedisListCache{client: client, key: key, ttl: ttl}, nil
}

// Get returns the cached snapshot. A miss is not an error.
func (c *RedisListCache) Get(ctx context.Context) ([]domain.Book, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var books []domain.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		// Corrupt entries behave like a miss; the next Set repairs them.
		return nil, false, nil
	}
	return books, true, nil
}

// Set stores a snapshot with the configured TTL.
func (c *RedisListCache) Set(ctx context.Context, books []domain.Book) error {
	raw, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate deletes the snapshot.
func (c *RedisListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
