package service

import (
	"context"
	"testing"

	"github.com/craftline/forecast-backend/internal/cache"
	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/forecast"
	"github.com/craftline/forecast-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *ForecastService {
	t.Helper()

	materials := memory.NewMaterialRepository()
	products := memory.NewProductRepository()
	bom := memory.NewBOMRepository()
	consumption := memory.NewConsumptionRepository()
	orders := memory.NewOrderRepository()
	snapshots := memory.NewSnapshotRepository()
	runs := memory.NewRunRepository()

	materials.Load([]domain.Material{
		{ID: 1, Code: "PLY-18", Name: "Plywood 18mm", Unit: "sheet", UnitCost: 2.5, CurrentStock: 100, LeadTimeDays: 5},
	})
	products.Load([]domain.Product{
		{ID: 10, Code: "SHELF-OAK", Name: "Oak Shelf", Stocked: true, DailyOutput: 10},
	})
	bom.Load([]domain.BOMLine{
		{ProductID: 10, MaterialID: 1, QuantityPerUnit: 0.5},
	})

	engine := forecast.NewEngine(materials, products, bom, consumption, orders, snapshots, runs, forecast.DefaultConfig())
	return NewForecastService(engine, materials, snapshots, runs, cache.NewNoopForecastCache())
}

func TestServiceRunAndSummaries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	result, err := svc.RunForecast(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, result.Run.Status)

	summaries, err := svc.GetSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "PLY-18", summaries[0].MaterialCode)
	assert.Equal(t, 5.0, summaries[0].DailyUsage)
	assert.Equal(t, -50.0, summaries[0].ProjectedStock)

	summary, err := svc.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, summaries[0], *summary)
}

func TestServiceSummaryWithoutSnapshot(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetSummary(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoForecast)

	_, err = svc.GetSummary(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNoForecast)
}

func TestServiceLatestRun(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoForecast)

	result, err := svc.RunForecast(ctx)
	require.NoError(t, err)

	run, err := svc.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Run.ID, run.ID)
	assert.Equal(t, domain.RunCompleted, run.Status)
}

func TestServiceSchedule(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RunForecast(ctx)
	require.NoError(t, err)

	schedule, diagnostics, err := svc.GetReplenishmentSchedule(ctx)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	require.Len(t, schedule.Tiers[domain.UrgencyLow], 1)
}
