package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/craftline/forecast-backend/internal/config"
	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastSummaryKeyPrefix = "forecast:summary"
	forecastScanBatchSize    = 100
)

// ForecastCache caches computed forecast summaries between regenerations so
// the dashboard does not hit the snapshot store on every request.
type ForecastCache interface {
	GetSummaries(ctx context.Context) ([]domain.ForecastSummary, bool, error)
	SetSummaries(ctx context.Context, summaries []domain.ForecastSummary) error
	GetSummary(ctx context.Context, materialID int64) (*domain.ForecastSummary, bool, error)
	SetSummary(ctx context.Context, summary domain.ForecastSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache builds a redis-backed cache, or a noop one when caching
// is disabled.
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

// NewNoopForecastCache returns a cache that never hits.
func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetSummaries(ctx context.Context) ([]domain.ForecastSummary, bool, error) {
	payload, err := c.client.Get(ctx, summariesKey()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.ForecastSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode forecast summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisForecastCache) SetSummaries(ctx context.Context, summaries []domain.ForecastSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode forecast summary cache: %w", err)
	}

	if err := c.client.Set(ctx, summariesKey(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) GetSummary(ctx context.Context, materialID int64) (*domain.ForecastSummary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey(materialID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.ForecastSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode forecast summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisForecastCache) SetSummary(ctx context.Context, summary domain.ForecastSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode forecast summary cache: %w", err)
	}

	if err := c.client.Set(ctx, summaryKey(summary.MaterialID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastSummaryKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) GetSummaries(ctx context.Context) ([]domain.ForecastSummary, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSummaries(ctx context.Context, summaries []domain.ForecastSummary) error {
	return nil
}

func (n *noopForecastCache) GetSummary(ctx context.Context, materialID int64) (*domain.ForecastSummary, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetSummary(ctx context.Context, summary domain.ForecastSummary) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func summariesKey() string {
	return forecastSummaryKeyPrefix + ":all"
}

func summaryKey(materialID int64) string {
	return forecastSummaryKeyPrefix + ":material:" + strconv.FormatInt(materialID, 10)
}
