// services/answer_cache.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geo-agent/geo-workflows/internal/config"
)

// redisAnswerCache stores provider answers in Redis keyed by the content hash
// of (provider, model, prompt). Identical questions to the same model reuse
// the cached answer until the TTL expires.
type redisAnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAnswerCache(client *redis.Client, cfg *config.Config) AnswerCache {
	return &redisAnswerCache{
		client: client,
		ttl:    time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
	}
}

func cacheKey(provider, model, prompt string) string {
	h := sha256.Sum256([]byte(provider + "|" + model + "|" + prompt))
	return "answer:" + hex.EncodeToString(h[:])
}

// Get returns the cached response, or (nil, nil) on a miss. Redis errors are
// returned so callers can decide whether to fall through to the provider.
func (c *redisAnswerCache) Get(ctx context.Context, provider, model, prompt string) (*AIResponse, error) {
	data, err := c.client.Get(ctx, cacheKey(provider, model, prompt)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var resp AIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("cache entry corrupt: %w", err)
	}
	return &resp, nil
}

func (c *redisAnswerCache) Set(ctx context.Context, provider, model, prompt string, resp *AIResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(provider, model, prompt), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}
