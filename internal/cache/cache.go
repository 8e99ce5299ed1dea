package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw upstream payloads for a short time so repeated searches
// for the same route and dates do not spend upstream quota. It never holds
// search results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig selects the Redis instance. URL, when set, wins over the
// individual fields.
type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func (cfg RedisConfig) options() (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// NewRedisCache connects and pings before returning, so a misconfigured
// cache fails at startup rather than on the first search.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte) error {
	if len(payload) == 0 {
		return errors.New("cache: refusing to store empty payload")
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, key string, payload []byte) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key derives a cache key from the upstream name, path and query. Query
// values are encoded in sorted order so equal searches share a key.
func Key(upstream, path string, query url.Values) string {
	hash := sha256.Sum256([]byte(upstream + "\n" + path + "\n" + query.Encode()))
	return "flight:" + upstream + ":" + hex.EncodeToString(hash[:])
}
