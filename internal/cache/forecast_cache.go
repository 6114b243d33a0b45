package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

const (
	forecastKeyPrefix     = "forecast:result"
	forecastScanBatchSize = 100
)

// ForecastCache memoizes the trained model's output per (store, date window).
// It is a pure optimization: every invocation remains a full recompute when
// the cache misses, and cached results are byte-identical to fresh ones.
type ForecastCache interface {
	Get(ctx context.Context, filter domain.QueryFilter) (*domain.ForecastResult, bool, error)
	Set(ctx context.Context, filter domain.QueryFilter, result *domain.ForecastResult) error

	// InvalidateAll drops every cached forecast. Called when fresh sales
	// land, since any window may now train differently.
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{client: client, ttl: ttl}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, filter domain.QueryFilter) (*domain.ForecastResult, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.ForecastResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, filter domain.QueryFilter, result *domain.ForecastResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, buildForecastKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) Get(ctx context.Context, filter domain.QueryFilter) (*domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, filter domain.QueryFilter, result *domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildForecastKey(filter domain.QueryFilter) string {
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, filterHash(filter))
}

// filterHash derives a stable cache key from the query filter. Zero window
// bounds hash as empty so unbounded and bounded queries never collide.
func filterHash(filter domain.QueryFilter) string {
	from, to := "", ""
	if !filter.From.IsZero() {
		from = filter.From.Format("2006-01-02")
	}
	if !filter.To.IsZero() {
		to = filter.To.Format("2006-01-02")
	}

	raw := fmt.Sprintf("store=%d|from=%s|to=%s", filter.StoreID, from, to)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
