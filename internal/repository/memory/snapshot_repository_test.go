package memory

import (
	"context"
	"testing"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotUpsertReplacesActive(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	first := domain.ForecastSnapshot{MaterialID: 1, DailyUsage: 5}
	require.NoError(t, repo.Upsert(ctx, &first))

	second := domain.ForecastSnapshot{MaterialID: 1, DailyUsage: 6}
	require.NoError(t, repo.Upsert(ctx, &second))

	active, err := repo.GetActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6.0, active.DailyUsage)

	all := repo.All()
	require.Len(t, all, 2)
	activeCount := 0
	for _, s := range all {
		if s.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestSnapshotUpsertIsPerMaterial(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.ForecastSnapshot{MaterialID: 1}))
	require.NoError(t, repo.Upsert(ctx, &domain.ForecastSnapshot{MaterialID: 2}))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].MaterialID)
	assert.Equal(t, int64(2), active[1].MaterialID)
}

func TestSnapshotGetActiveNotFound(t *testing.T) {
	repo := NewSnapshotRepository()

	_, err := repo.GetActive(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
