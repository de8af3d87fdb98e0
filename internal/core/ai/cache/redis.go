package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// redisCache is the shared store for multi-instance deployments.
type redisCache struct {
	client *redis.Client
	config *config.Config
	hits   int64
	misses int64
}

func newRedisCache(cfg *config.Config) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	common.LogInfo("redis cache initialized",
		zap.String("addr", cfg.Cache.RedisAddr),
		zap.Duration("ttl", cfg.Cache.TTL),
	)
	return &redisCache{client: client, config: cfg}, nil
}

func (c *redisCache) Get(ctx context.Context, prompt string) (string, error) {
	value, err := c.client.Get(ctx, Key(prompt)).Result()
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		if err == redis.Nil {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	atomic.AddInt64(&c.hits, 1)
	return value, nil
}

func (c *redisCache) Set(ctx context.Context, prompt, value string) error {
	if err := c.client.Set(ctx, Key(prompt), value, c.config.Cache.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (c *redisCache) Stats() map[string]interface{} {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	hitRatio := 0.0
	if hits+misses > 0 {
		hitRatio = float64(hits) / float64(hits+misses)
	}
	return map[string]interface{}{
		"backend":   "redis",
		"addr":      c.config.Cache.RedisAddr,
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": hitRatio,
	}
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
