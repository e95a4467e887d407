package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/craftline/forecast-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine      *Engine
	materials   *memory.MaterialRepository
	products    *memory.ProductRepository
	bom         *memory.BOMRepository
	consumption *memory.ConsumptionRepository
	orders      *memory.OrderRepository
	snapshots   *memory.SnapshotRepository
	runs        *memory.RunRepository
	now         time.Time
}

// newEngineFixture wires an engine over in-memory stores with one forecastable
// plywood material (product 10 builds 10 shelves a day, each using half a
// sheet) and one glue material nothing consumes.
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		materials:   memory.NewMaterialRepository(),
		products:    memory.NewProductRepository(),
		bom:         memory.NewBOMRepository(),
		consumption: memory.NewConsumptionRepository(),
		orders:      memory.NewOrderRepository(),
		snapshots:   memory.NewSnapshotRepository(),
		runs:        memory.NewRunRepository(),
		now:         day(2026, 3, 15),
	}

	f.materials.Load([]domain.Material{
		{ID: 1, Code: "PLY-18", Name: "Plywood 18mm", Unit: "sheet", UnitCost: 2.5, CurrentStock: 100, LeadTimeDays: 5},
		{ID: 2, Code: "GLU-01", Name: "Wood Glue", Unit: "l", CurrentStock: 40, LeadTimeDays: 3},
	})
	f.products.Load([]domain.Product{
		{ID: 10, Code: "SHELF-OAK", Name: "Oak Shelf", Stocked: true, DailyOutput: 10},
	})
	f.bom.Load([]domain.BOMLine{
		{ProductID: 10, MaterialID: 1, QuantityPerUnit: 0.5},
	})

	f.engine = NewEngine(f.materials, f.products, f.bom, f.consumption, f.orders, f.snapshots, f.runs, DefaultConfig())
	f.engine.now = func() time.Time { return f.now }

	return f
}

func TestEngineRun(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	result, err := f.engine.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.RunCompleted, result.Run.Status)
	assert.Equal(t, 2, result.Run.TotalMaterials)
	assert.Equal(t, 1, result.Run.ProcessedMaterials)
	assert.Equal(t, 1, result.Run.SkippedMaterials)
	require.NotNil(t, result.Run.CompletedAt)

	// The glue has no BOM line; it is diagnosed, not fatal.
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, int64(2), result.Diagnostics[0].MaterialID)

	require.Len(t, result.Results, 1)
	r := result.Results[0]

	// No consumption history: the BOM expectation of 10 x 0.5 drives usage.
	assert.Equal(t, MethodBOMBaseline, r.Estimate.Method)
	assert.Equal(t, 5.0, r.Estimate.DailyUsage)

	assert.Equal(t, 150.0, r.Snapshot.ForecastedUsage)
	assert.Equal(t, -50.0, r.Snapshot.ProjectedStock)
	assert.Equal(t, 20, r.Snapshot.DaysUntilStockout)
	assert.Equal(t, domain.StatusOutOfStock, r.Snapshot.Status)
	assert.True(t, r.Snapshot.IsActive)

	stored, err := f.snapshots.GetActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, r.Snapshot.ProjectedStock, stored.ProjectedStock)
}

func TestEngineRunConsumptionHistoryOverridesBaseline(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Two weeks of steady 6-sheet days. Within the trusted band of the
	// 5/day expectation, so the history wins.
	events := make([]domain.StockedOutputEvent, 0, 14)
	for i := 1; i <= 14; i++ {
		qty := 6.0
		events = append(events, domain.StockedOutputEvent{
			ProductID:        10,
			MaterialID:       1,
			Date:             f.now.AddDate(0, 0, -i),
			QuantityProduced: 12,
			MaterialQuantity: &qty,
		})
	}
	f.consumption.LoadStockedOutput(events)

	result, err := f.engine.Run(ctx, 1)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)

	r := result.Results[0]
	assert.Equal(t, MethodWeightedAverage, r.Estimate.Method)
	assert.InDelta(t, 6.0, r.Estimate.DailyUsage, 1e-9)
	assert.Equal(t, 14, r.Estimate.DataPoints)
	assert.Equal(t, 100, r.Snapshot.ConfidenceScore)
}

func TestEngineRunIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	first, err := f.engine.Run(ctx, 1)
	require.NoError(t, err)
	second, err := f.engine.Run(ctx, 1)
	require.NoError(t, err)

	a := first.Results[0].Snapshot
	b := second.Results[0].Snapshot
	assert.Equal(t, a.DailyUsage, b.DailyUsage)
	assert.Equal(t, a.ForecastedUsage, b.ForecastedUsage)
	assert.Equal(t, a.ProjectedStock, b.ProjectedStock)
	assert.Equal(t, a.DaysUntilStockout, b.DaysUntilStockout)
	assert.Equal(t, a.Status, b.Status)

	// The rerun replaced the active snapshot instead of stacking a second
	// active one.
	all := f.snapshots.All()
	require.Len(t, all, 2)
	active := 0
	for _, s := range all {
		if s.IsActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestEngineRunSkipsUnknownMaterialIDs(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.engine.Run(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Run.TotalMaterials)
	assert.Len(t, result.Results, 1)
}

func TestClassifyUntracked(t *testing.T) {
	m := domain.Material{CurrentStock: 40, CriticalStock: 10, ReorderLevel: 20, MaxLevel: 100}
	assert.Equal(t, domain.StatusInStock, ClassifyUntracked(m))

	m.CurrentStock = 15
	assert.Equal(t, domain.StatusLowStock, ClassifyUntracked(m))
}

func TestEngineSchedule(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Run(ctx)
	require.NoError(t, err)

	schedule, diagnostics, err := f.engine.Schedule(ctx)
	require.NoError(t, err)
	assert.Empty(t, diagnostics)

	// 20 days of cover lands in the low tier. Reorder point is 5x5 usage
	// plus the 20% buffer = 30; max level defaults to 30 + 50 = 80; the
	// lead-time cover term 5x(5+7) = 60 beats topping up to 80+35-100.
	require.Len(t, schedule.Tiers[domain.UrgencyLow], 1)
	entry := schedule.Tiers[domain.UrgencyLow][0]
	assert.Equal(t, "PLY-18", entry.MaterialCode)
	assert.InDelta(t, 60.0, entry.RecommendedQuantity, 1e-9)
	assert.True(t, entry.EstimatedCost.Equal(decimal.NewFromFloat(150)))
	// Stock 100 crosses the 30-sheet trigger in 14 days; ordering five
	// lead-time days ahead of that is nine days out.
	assert.Equal(t, day(2026, 3, 24), entry.ReorderDate)

	for _, tier := range []domain.Urgency{domain.UrgencyCritical, domain.UrgencyHigh, domain.UrgencyMedium} {
		assert.Empty(t, schedule.Tiers[tier])
	}
}

func TestEngineScheduleReusesSnapshotUsage(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Run(ctx)
	require.NoError(t, err)

	// New consumption lands after the run. The schedule must keep using the
	// published snapshot figure, not recompute a different one.
	qty := 30.0
	f.consumption.LoadStockedOutput([]domain.StockedOutputEvent{
		{ProductID: 10, MaterialID: 1, Date: f.now.AddDate(0, 0, -1), QuantityProduced: 60, MaterialQuantity: &qty},
	})

	schedule, _, err := f.engine.Schedule(ctx)
	require.NoError(t, err)

	require.Len(t, schedule.Tiers[domain.UrgencyLow], 1)
	assert.InDelta(t, 60.0, schedule.Tiers[domain.UrgencyLow][0].RecommendedQuantity, 1e-9)
}
