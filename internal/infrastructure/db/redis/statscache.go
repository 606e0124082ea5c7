package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userhub/identity-api/internal/core/domain"
)

const (
	statsKey = "identity:stats"
	statsTTL = 30 * time.Second
)

// StatsCache caches the admin stats aggregate in Redis for statsTTL. Cache
// failures are swallowed: a broken cache degrades to repository reads, it
// never fails a request.
type StatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a StatsCache wrapping the given Redis client.
func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

func (c *StatsCache) Get(ctx context.Context) (*domain.UserStats, bool) {
	raw, err := c.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var stats domain.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats *domain.UserStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statsKey, raw, statsTTL).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, statsKey).Err()
}
