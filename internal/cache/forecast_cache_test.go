package cache

import (
	"context"
	"testing"

	"github.com/craftline/forecast-backend/internal/config"
	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeysAreStable(t *testing.T) {
	assert.Equal(t, "forecast:summary:all", summariesKey())
	assert.Equal(t, "forecast:summary:material:42", summaryKey(42))
}

func TestDisabledConfigYieldsNoopCache(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()

	summaries, hit, err := c.GetSummaries(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, summaries)

	require.NoError(t, c.SetSummaries(ctx, []domain.ForecastSummary{{MaterialID: 1}}))

	summary, hit, err := c.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, summary)

	require.NoError(t, c.InvalidateAll(ctx))
}
