package scitech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps generated responses between requests
type Cache interface {
	// Get returns the stored value; ok is false on a miss or an expired entry
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value for ttl; a ttl of zero keeps it until overwritten
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const redisKeyPrefix = "scitech:"

// RedisCache is a Cache shared by several web server instances
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to the server in redisURL (redis://host:port/db)
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the connection pool
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func topicsKey(grade GradeLevel) string {
	return "topics:" + grade.ID
}

// fallbackKey marks a grade whose topic generation recently failed
func fallbackKey(grade GradeLevel) string {
	return "topics-fallback:" + grade.ID
}

func contentKey(grade GradeLevel, topicID string) string {
	return "content:" + grade.ID + ":" + topicID
}
