package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// HotCacheRepo is a short-TTL Redis cache in front of the live passthrough
// endpoints (trending, popular, providers). It is optional: a zero-value repo
// no-ops every call so the service code never branches on availability.
type HotCacheRepo struct {
	client *redis.Client
}

// NewHotCacheRepo connects to Redis, or returns a disabled repo when no URL
// is configured.
func NewHotCacheRepo(redisURL, password string) (*HotCacheRepo, error) {
	if redisURL == "" {
		log.Println("[HotCache] no REDIS_URL configured, hot cache disabled")
		return &HotCacheRepo{}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &HotCacheRepo{client: rdb}, nil
}

// GetJSON fills target from the cached value, returning false on miss or when
// the cache is disabled.
func (r *HotCacheRepo) GetJSON(ctx context.Context, key string, target interface{}) bool {
	if r == nil || r.client == nil {
		return false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		log.Printf("[HotCache] corrupt entry for %s, dropping: %v", key, err)
		r.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key with the given TTL, best-effort.
func (r *HotCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r == nil || r.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[HotCache] marshal for %s failed: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[HotCache] set %s failed: %v", key, err)
	}
}

// Close releases the Redis connection when the cache is enabled.
func (r *HotCacheRepo) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
