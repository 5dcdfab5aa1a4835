package feedcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wallfeed/wall-service/internal/domain/models"
	errs "github.com/wallfeed/wall-service/internal/lib/errors"
	"github.com/wallfeed/wall-service/internal/storage"
)

const recentKey = "wall:recent"

// Cache holds a cache-aside copy of the recent feed window in redis.
// It is dropped on every insert, so a stale window never outlives one write.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Cache{rdb: rdb, ttl: ttl}
}

// Recent returns the cached window.
// Returns [storage.ErrNotFound] on cache miss
func (c *Cache) Recent(ctx context.Context) ([]models.Post, error) {
	const op = "feedcache.Recent"

	raw, err := c.rdb.Get(ctx, recentKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.Fail(op, storage.ErrNotFound)
		}
		return nil, errs.Fail(op, err)
	}

	var posts []models.Post
	if err = json.Unmarshal(raw, &posts); err != nil {
		return nil, errs.Fail(op, err)
	}

	return posts, nil
}

// SetRecent stores the window for the configured ttl
func (c *Cache) SetRecent(ctx context.Context, posts []models.Post) error {
	const op = "feedcache.SetRecent"

	raw, err := json.Marshal(posts)
	if err != nil {
		return errs.Fail(op, err)
	}

	if err = c.rdb.Set(ctx, recentKey, raw, c.ttl).Err(); err != nil {
		return errs.Fail(op, err)
	}

	return nil
}

// Invalidate drops the cached window
func (c *Cache) Invalidate(ctx context.Context) error {
	const op = "feedcache.Invalidate"

	if err := c.rdb.Del(ctx, recentKey).Err(); err != nil {
		return errs.Fail(op, err)
	}

	return nil
}

func (c *Cache) Stop() {
	_ = c.rdb.Close()
}
