package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/streaming-catalog/internal/domain"
	"github.com/actuallystonmai/streaming-catalog/internal/metrics"
)

const defaultTTL = 10 * time.Minute

const keyPrefix = "catalog:"

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func HomeKey() string {
	return keyPrefix + "home"
}

func GenreKey(kind domain.Kind, genreID, page int) string {
	return fmt.Sprintf("%sgenre:%s:%d:page:%d", keyPrefix, kind, genreID, page)
}

func DetailsKey(kind domain.Kind, id int64) string {
	return fmt.Sprintf("%sdetails:%s:%d", keyPrefix, kind, id)
}

func StreamKey(kind domain.Kind, id int64, season, episode int) string {
	return keyPrefix + "stream:" + string(kind) + ":" + strconv.FormatInt(id, 10) +
		":s" + strconv.Itoa(season) + "e" + strconv.Itoa(episode)
}

// namespace is the key segment after the prefix, used as a metrics label.
func namespace(key string) string {
	rest := key[len(keyPrefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			return rest[:i]
		}
	}
	return rest
}

// Get decodes the value at key into dst. found is false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMiss(namespace(key))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	metrics.CacheHit(namespace(key))
	return true, nil
}

// Set stores v as JSON. A non-positive ttl uses the default.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

// ClearTitle drops cached details and streams for one title, e.g. after a
// stream URL stops resolving.
func (c *Cache) ClearTitle(ctx context.Context, kind domain.Kind, id int64) error {
	if err := c.client.Del(ctx, DetailsKey(kind, id)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", DetailsKey(kind, id), err)
	}
	pattern := fmt.Sprintf("%sstream:%s:%d:*", keyPrefix, kind, id)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
